// Package recovery реализует цепочку проверки секретных вопросов,
// которая разрешает сброс мастер-пароля.
package recovery

import "MyPass/internal/model"

// Outcome — результат цепочки. Провал восстановления — ожидаемое значение, а не ошибка.
type Outcome int

const (
	Pending Outcome = iota
	Succeeded
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "SUCCEEDED"
	case Failed:
		return "FAILED"
	}
	return "PENDING"
}

// AnswerVerifier проверяет ответ против сохранённого верификатора.
// Нормализация ответа — ответственность реализации (см. hasher.VerifyAnswer).
type AnswerVerifier interface {
	VerifyAnswer(answer, verifier string) bool
}

type challenge struct {
	prompt   string
	verifier string
	answer   string
}

// Chain — упорядоченный набор проверок. Порядок совпадает с порядком регистрации вопросов.
type Chain struct {
	verifier   AnswerVerifier
	challenges []challenge
	mismatch   bool
	outcome    Outcome
	steps      int
}

// New связывает вопросы пользователя с ответами строго по позиции.
// Если количество ответов не совпадает с количеством вопросов, цепочка сразу закрыта (Failed при Evaluate).
func New(v AnswerVerifier, questions []model.SecurityQuestion, answers []string) *Chain {
	c := &Chain{verifier: v, outcome: Pending}
	if len(answers) != len(questions) {
		c.mismatch = true
		return c
	}
	c.challenges = make([]challenge, len(questions))
	for i, q := range questions {
		c.challenges[i] = challenge{prompt: q.Prompt, verifier: q.AnswerHash, answer: answers[i]}
	}
	return c
}

// Evaluate проверяет ответы по порядку и останавливается на первом несовпадении.
// Повторный вызов возвращает уже вычисленный результат.
func (c *Chain) Evaluate() Outcome {
	if c.outcome != Pending {
		return c.outcome
	}
	if c.mismatch || len(c.challenges) == 0 {
		c.outcome = Failed
		return c.outcome
	}
	for _, ch := range c.challenges {
		c.steps++
		if !c.verifier.VerifyAnswer(ch.answer, ch.verifier) {
			c.outcome = Failed
			return c.outcome
		}
	}
	c.outcome = Succeeded
	return c.outcome
}

// Outcome возвращает текущее состояние без вычисления.
func (c *Chain) Outcome() Outcome { return c.outcome }

// Steps — сколько проверок было выполнено. Только для журналов и тестов, пользователю не отдаётся.
func (c *Chain) Steps() int { return c.steps }

// Len — количество проверок в цепочке.
func (c *Chain) Len() int { return len(c.challenges) }
