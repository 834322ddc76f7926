// Package cli реализует инструмент командной строки Impulse.
//
// CLI — клиентская утилита для Impulse API. Работает через HTTP,
// не импортирует внутренние пакеты системы.
//
// Команды организованы по ресурсам:
//   - trigger: list, replace, remove
//   - metrics: show
//
// Каждая группа создаётся через фабричную функцию (NewTriggerCmd и
// т.д.), принимающую clientFn и outputFn — замыкания для ленивого
// создания Client и Output после парсинга PersistentFlags.
//
// Данные выводятся в stdout (таблица или --json), сообщения — в stderr,
// что позволяет pipe: impulse trigger list acme --json | jq .
package cli
