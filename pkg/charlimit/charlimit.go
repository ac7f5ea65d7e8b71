// Пакет считает бюджет символов документа при настроенном лимите.
// Лимит применяется к плоскому тексту: ввод сверх лимита отклоняется,
// вставка обрезается ровно до остатка бюджета.
package charlimit

// Limiter - бюджет символов. max == 0 означает отсутствие лимита.
type Limiter struct {
	max int
}

func New(max int) *Limiter {
	if max < 0 {
		max = 0
	}
	return &Limiter{max: max}
}

func (l *Limiter) Unlimited() bool { return l.max == 0 }

func (l *Limiter) Max() int { return l.max }

// Remaining возвращает остаток бюджета при текущей длине текста.
// Для безлимитного лимитера возвращается -1.
func (l *Limiter) Remaining(current int) int {
	if l.Unlimited() {
		return -1
	}
	remain := l.max - current
	if remain < 0 {
		return 0
	}
	return remain
}

// Allow сообщает, помещается ли add символов в остаток бюджета.
func (l *Limiter) Allow(current, add int) bool {
	if l.Unlimited() {
		return true
	}
	return current+add <= l.max
}

// Truncate обрезает text до остатка бюджета (по рунам). Второй результат
// сообщает, была ли обрезка.
func (l *Limiter) Truncate(current int, text string) (string, bool) {
	if l.Unlimited() {
		return text, false
	}
	remain := l.Remaining(current)
	runes := []rune(text)
	if len(runes) <= remain {
		return text, false
	}
	return string(runes[:remain]), true
}
