// Package responder реализует конечный автомат сжатия одного ответа.
// Responder перехватывает поток событий ответа, по первым событиям
// необратимо выбирает стратегию — пропуск без изменений, буферное сжатие
// целиком или потоковое сжатие — и согласованно переписывает заголовки.
package responder

import (
	"errors"
	"strconv"

	"github.com/sol1corejz/go-http-compress/internal/codec"
	"github.com/sol1corejz/go-http-compress/internal/headers"
	"github.com/sol1corejz/go-http-compress/internal/models"
)

// Ошибки нарушения контракта обработчиком: тело до стартового события,
// повторный старт, события после завершающего фрагмента.
var (
	ErrBodyBeforeStart  = errors.New("responder: body event before start event")
	ErrDuplicateStart   = errors.New("responder: duplicate start event")
	ErrResponseFinished = errors.New("responder: event after terminal body event")
	ErrUnknownEventType = errors.New("responder: unknown event type")
)

// Sink принимает событие ответа для передачи транспорту.
// Ошибка означает, что соединение потеряно: сжатие прекращается,
// частично сжатый поток повторить невозможно.
type Sink func(models.ResponseEvent) error

// state — состояние автомата. Переходы необратимы в рамках одного ответа.
type state int

const (
	stateIdle state = iota // стартовое событие ещё не переслано
	statePassthrough       // ответ идёт без изменений
	stateStreaming         // потоковое сжатие, фрагменты идут по мере поступления
	stateDone              // завершающий фрагмент отправлен
)

// Responder обслуживает ровно один ответ и не может переиспользоваться.
type Responder struct {
	sink     Sink
	factory  codec.Factory
	encoding string
	minSize  int

	state    state
	captured bool
	start    models.StartEvent
	cmp      codec.Codec
}

// New создаёт Responder для одного ответа. Кодек не создаётся до момента,
// когда сжатие действительно выбрано: ответы, идущие без изменений,
// не выделяют состояние компрессора.
func New(sink Sink, factory codec.Factory, encoding string, minSize int) *Responder {
	return &Responder{
		sink:     sink,
		factory:  factory,
		encoding: encoding,
		minSize:  minSize,
	}
}

// Send принимает очередное событие ответа от обработчика.
// Вниз по потоку уходит ровно одно стартовое событие и последовательность
// фрагментов, завершающаяся ровно одним фрагментом с MoreBody=false.
func (r *Responder) Send(ev models.ResponseEvent) error {
	if r.state == stateDone {
		return ErrResponseFinished
	}

	switch ev := ev.(type) {
	case models.StartEvent:
		return r.onStart(ev)
	case models.BodyEvent:
		return r.onBody(ev)
	default:
		return ErrUnknownEventType
	}
}

func (r *Responder) onStart(ev models.StartEvent) error {
	if r.captured {
		return ErrDuplicateStart
	}
	r.captured = true
	r.start = ev

	// Обработчик уже закодировал тело сам — ответ прозрачно пропускается,
	// кодек не создаётся.
	if _, ok := headers.Get(ev.Headers, "Content-Encoding"); ok {
		r.state = statePassthrough
		return r.forward(ev)
	}

	// Стартовое событие придерживается до первого фрагмента тела:
	// стратегия ещё не выбрана, заголовки переписывать рано.
	return nil
}

func (r *Responder) onBody(ev models.BodyEvent) error {
	switch r.state {
	case statePassthrough:
		if !ev.MoreBody {
			r.state = stateDone
		}
		return r.forward(ev)
	case stateStreaming:
		return r.streamChunk(ev)
	case stateIdle:
		return r.firstChunk(ev)
	}
	return ErrResponseFinished
}

// firstChunk выбирает стратегию по первому фрагменту тела.
func (r *Responder) firstChunk(ev models.BodyEvent) error {
	if !r.captured {
		return ErrBodyBeforeStart
	}

	// Целиком пришедшее маленькое тело сжимать невыгодно: накладные
	// расходы формата превышают экономию.
	if !ev.MoreBody && len(ev.Body) < r.minSize {
		r.state = stateDone
		if err := r.forward(r.start); err != nil {
			return err
		}
		return r.forward(ev)
	}

	cmp, err := r.factory()
	if err != nil {
		// Несобравшийся кодек не должен ломать ответ: статус и тело
		// уходят нетронутыми, как при несогласованном сжатии.
		r.state = statePassthrough
		if !ev.MoreBody {
			r.state = stateDone
		}
		if ferr := r.forward(r.start); ferr != nil {
			return ferr
		}
		return r.forward(ev)
	}
	r.cmp = cmp

	if !ev.MoreBody {
		return r.bufferedSingleShot(ev)
	}
	return r.startStreaming(ev)
}

// bufferedSingleShot сжимает целиком пришедшее тело за один проход
// и выставляет точный Content-Length.
func (r *Responder) bufferedSingleShot(ev models.BodyEvent) error {
	compressed, err := r.compressFinal(ev.Body)
	if err != nil {
		return err
	}

	start := r.start
	start.Headers = rewriteHeaders(start.Headers, r.encoding, len(compressed))

	r.state = stateDone
	if err := r.forward(start); err != nil {
		return err
	}
	return r.forward(models.BodyEvent{Body: compressed})
}

// startStreaming переводит ответ в потоковое сжатие: итоговый размер
// неизвестен, Content-Length удаляется, порог минимального размера
// не применяется.
func (r *Responder) startStreaming(ev models.BodyEvent) error {
	start := r.start
	start.Headers = rewriteHeaders(start.Headers, r.encoding, -1)

	r.state = stateStreaming
	if err := r.forward(start); err != nil {
		return err
	}

	out, err := r.cmp.Compress(ev.Body)
	if err != nil {
		return r.abort(err)
	}
	// Кодек мог отложить вывод во внутреннем буфере — пустой
	// промежуточный фрагмент пересылать незачем.
	if len(out) == 0 {
		return nil
	}
	return r.forward(models.BodyEvent{Body: out, MoreBody: true})
}

// streamChunk обрабатывает очередной фрагмент в потоковом режиме.
// В памяти держится не больше одного фрагмента сжатого вывода.
func (r *Responder) streamChunk(ev models.BodyEvent) error {
	if ev.MoreBody {
		out, err := r.cmp.Compress(ev.Body)
		if err != nil {
			return r.abort(err)
		}
		if len(out) == 0 {
			return nil
		}
		return r.forward(models.BodyEvent{Body: out, MoreBody: true})
	}

	compressed, err := r.compressFinal(ev.Body)
	if err != nil {
		return err
	}

	// Завершающий фрагмент уходит всегда, даже пустой: транспорту нужен
	// маркер конца потока.
	r.state = stateDone
	return r.forward(models.BodyEvent{Body: compressed})
}

// compressFinal сжимает последний фрагмент и дожимает остаток потока.
func (r *Responder) compressFinal(body []byte) ([]byte, error) {
	out, err := r.cmp.Compress(body)
	if err != nil {
		return nil, r.abort(err)
	}
	flushed, err := r.cmp.Flush()
	if err != nil {
		return nil, r.abort(err)
	}
	r.cmp = nil
	return append(out, flushed...), nil
}

// forward передаёт событие транспорту. Ошибка приёмника завершает ответ:
// кодек освобождается, дальнейшие события отвергаются.
func (r *Responder) forward(ev models.ResponseEvent) error {
	if err := r.sink(ev); err != nil {
		return r.abort(err)
	}
	return nil
}

func (r *Responder) abort(err error) error {
	r.state = stateDone
	r.cmp = nil
	return err
}

// rewriteHeaders переписывает заголовки под выбранное кодирование.
// Функция зависит только от исходных заголовков и аргументов, поэтому
// результат детерминирован. contentLength < 0 означает потоковый режим:
// Content-Length удаляется вместо перезаписи.
func rewriteHeaders(hs []models.Header, encoding string, contentLength int) []models.Header {
	out := headers.Clone(hs)
	out = headers.Set(out, "Content-Encoding", encoding)
	out = headers.MergeVary(out, "Accept-Encoding")
	if contentLength < 0 {
		return headers.Remove(out, "Content-Length")
	}
	return headers.Set(out, "Content-Length", strconv.Itoa(contentLength))
}
