// Package visitday реализует сравнение дат визитов с точностью до
// календарного дня в одном фиксированном часовом поясе. Все проверки
// дат при выпуске, сканировании и фоновом истечении QR-кодов проходят
// через этот пакет, чтобы исключить расхождения из-за часовых поясов.
package visitday

import (
	"fmt"
	"time"
)

// Format формат даты визита во внешних запросах и ответах.
const Format = "02-01-2006"

// Day календарный день визита в фиксированном часовом поясе.
type Day struct {
	t time.Time
}

// Clock выдаёт календарные дни в заданном часовом поясе.
type Clock struct {
	loc *time.Location
}

// NewClock создаёт Clock для часового пояса из конфигурации.
func NewClock(timezone string) (*Clock, error) {
	const op = "visitday.NewClock"
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Clock{loc: loc}, nil
}

// Today возвращает текущий календарный день.
func (c *Clock) Today() Day {
	return c.FromTime(time.Now())
}

// FromTime усечёт момент времени до календарного дня.
func (c *Clock) FromTime(t time.Time) Day {
	tt := t.In(c.loc)
	return Day{t: time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, c.loc)}
}

// Parse разбирает дату визита из строки в формате Format.
func (c *Clock) Parse(value string) (Day, error) {
	const op = "visitday.Parse"
	t, err := time.ParseInLocation(Format, value, c.loc)
	if err != nil {
		return Day{}, fmt.Errorf("%s: %w", op, err)
	}
	return c.FromTime(t), nil
}

// Before сообщает, предшествует ли день d дню other.
func (d Day) Before(other Day) bool {
	return d.t.Before(other.t)
}

// Equal сообщает, совпадают ли календарные дни.
func (d Day) Equal(other Day) bool {
	return d.t.Equal(other.t)
}

// Time возвращает полночь этого дня в фиксированном часовом поясе.
func (d Day) Time() time.Time {
	return d.t
}

// String возвращает день в формате Format.
func (d Day) String() string {
	return d.t.Format(Format)
}
