// Package api — HTTP-слой управления триггерами и чтения метрик.
//
// Контракт поверхности: замена/перечисление/удаление набора триггеров
// workspace и чтение истории выполнений с агрегатами. Ошибки
// валидации — 400 с описанием поля, недоступность хранилища — 500 как
// есть, прочее — generic 500 без утечки внутренних деталей.
package api
