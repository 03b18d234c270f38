package models

import "time"

// Типы посетителей.
const (
	VisitorTypeIndividual = "individual"
	VisitorTypeGroup      = "group"
)

// Visitor представляет посетителя или группу посетителей,
// принадлежащих одному подписчику.
type Visitor struct {
	ID          string    // Уникальный идентификатор посетителя
	UserUID     string    // Владелец-подписчик
	VisitorType string    // individual или group
	FirstName   string    // Имя (для individual)
	LastName    string    // Фамилия (для individual)
	GroupName   string    // Название группы (для group)
	CreatedAt   time.Time // Дата создания записи
}

// DisplayName возвращает отображаемое имя посетителя в зависимости от типа.
func (v *Visitor) DisplayName() string {
	if v.VisitorType == VisitorTypeGroup {
		return v.GroupName
	}
	return v.FirstName + " " + v.LastName
}

// DummyVisitor используется для приёма данных нового посетителя из JSON-запроса.
// Имя и фамилия обязательны для individual, название группы — для group.
type DummyVisitor struct {
	VisitorType string `json:"visitor_type" validate:"required,oneof=individual group"`
	FirstName   string `json:"first_name,omitempty" validate:"required_if=VisitorType individual"`
	LastName    string `json:"last_name,omitempty" validate:"required_if=VisitorType individual"`
	GroupName   string `json:"group_name,omitempty" validate:"required_if=VisitorType group"`
}

// VisitDetail представляет одно запланированное посещение для посетителя.
type VisitDetail struct {
	ID             string    // Уникальный идентификатор визита
	VisitorID      string    // Посетитель, к которому относится визит
	VisitDate      time.Time // Запланированная дата визита
	Purpose        string    // Цель визита
	Department     string    // Подразделение
	Classification string    // Классификация визита
	NoOfVisitors   int       // Количество посетителей
	CreatedAt      time.Time // Дата создания записи
}

// DummyVisitDetail используется для приёма данных нового визита из JSON-запроса.
// Дата приходит строкой в формате 02-01-2006.
type DummyVisitDetail struct {
	VisitorID      string `json:"visitor_id" validate:"required,uuid"`
	VisitDate      string `json:"visit_date" validate:"required"`
	Purpose        string `json:"purpose" validate:"required"`
	Department     string `json:"department" validate:"required"`
	Classification string `json:"classification,omitempty"`
	NoOfVisitors   int    `json:"no_of_visitors" validate:"required,gt=0"`
}
