package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shaiso/Impulse/internal/domain"
)

// defaultCallTimeout — жёсткий таймаут исходящего вызова.
// Механизма отмены in-flight вызова снаружи нет.
const defaultCallTimeout = 30 * time.Second

// Outcome — результат одной попытки исходящего вызова.
type Outcome struct {
	// StatusCode — HTTP-код ответа. nil при транспортной ошибке.
	StatusCode *int

	// Err — транспортная ошибка. nil, если ответ получен
	// (любой HTTP-код, включая 4xx/5xx, считается success).
	Err error

	// Duration — от момента перед отправкой до получения ответа.
	Duration time.Duration
}

// Failed возвращает true при транспортной ошибке.
func (o *Outcome) Failed() bool {
	return o.Err != nil
}

// HTTPExecutor выполняет HTTP-вызов триггера.
//
// Классификация исхода — строго транспортная: полученный ответ с кодом
// 4xx/5xx остаётся успешным выполнением; failed — только ошибки
// соединения, DNS, TLS и таймауты.
type HTTPExecutor struct {
	client  *http.Client
	timeout time.Duration
}

// NewHTTPExecutor создаёт HTTPExecutor.
func NewHTTPExecutor() *HTTPExecutor {
	return &HTTPExecutor{
		client:  &http.Client{},
		timeout: defaultCallTimeout,
	}
}

// Execute выполняет вызов по определению триггера.
func (e *HTTPExecutor) Execute(ctx context.Context, t domain.Trigger) Outcome {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var bodyReader io.Reader
	if t.HasBody() && t.Payload != nil {
		bodyBytes, err := json.Marshal(t.Payload)
		if err != nil {
			return Outcome{Err: fmt.Errorf("%w: marshal payload: %v", ErrCallFailed, err)}
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, domain.NormalizeMethod(t.Method), t.URL, bodyReader)
	if err != nil {
		return Outcome{Err: fmt.Errorf("%w: create request: %v", ErrCallFailed, err)}
	}

	for key, val := range t.Headers {
		req.Header.Set(key, val)
	}

	// Заголовки по умолчанию — если триггер их не переопределил.
	if bodyReader != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", "impulse-worker")
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		return Outcome{Err: fmt.Errorf("%w: %v", ErrCallFailed, err), Duration: duration}
	}
	defer resp.Body.Close()

	// Тело не интересует, но соединение надо вернуть в пул.
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	code := resp.StatusCode
	return Outcome{StatusCode: &code, Duration: duration}
}
