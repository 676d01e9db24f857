// Package models описывает события ответа, проходящие через слой сжатия:
// стартовое событие с заголовками и события с фрагментами тела.
package models

// Header — одна пара "имя-значение" заголовка ответа.
// Сравнение имён выполняется без учёта регистра, порядок и дубликаты сохраняются.
type Header struct {
	Name  string
	Value string
}

// ResponseEvent — событие ответа: StartEvent либо BodyEvent.
type ResponseEvent interface {
	isResponseEvent()
}

// StartEvent несёт статус ответа и упорядоченный список заголовков.
// Для одного ответа испускается ровно одно стартовое событие, и оно
// всегда предшествует событиям тела.
type StartEvent struct {
	Status  int
	Headers []Header
}

// BodyEvent несёт фрагмент тела ответа. MoreBody=false помечает
// завершающий фрагмент; он испускается ровно один раз.
type BodyEvent struct {
	Body     []byte
	MoreBody bool
}

func (StartEvent) isResponseEvent() {}
func (BodyEvent) isResponseEvent()  {}
