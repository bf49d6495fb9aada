package domain

import (
	"time"
)

// ---------------- Vista de calendario mensual ----------------

// MaxVisibleTasksPerDay es el máximo de tareas que una celda del calendario
// muestra antes de colapsar el resto en un contador "+N more".
const MaxVisibleTasksPerDay = 3

// VisibleRange es el rango de días que cubre la rejilla de un mes: del domingo
// en o antes del día 1 al sábado en o después del último día del mes. Ambos
// extremos son inclusivos y están truncados a medianoche.
type VisibleRange struct {
	Start time.Time
	End   time.Time
}

// MonthRange calcula el rango visible de la rejilla para un mes dado, en la
// zona horaria indicada. El rango siempre empieza en domingo y termina en
// sábado, de modo que cubre un número entero de semanas.
func MonthRange(year int, month time.Month, loc *time.Location) VisibleRange {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)

	start := first.AddDate(0, 0, -int(first.Weekday()))              // retrocede hasta el domingo
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))     // avanza hasta el sábado

	return VisibleRange{Start: start, End: end}
}

// Days enumera todos los días del rango, en orden.
func (r VisibleRange) Days() []time.Time {
	var days []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Contains indica si el día de calendario de 't' cae dentro del rango.
func (r VisibleRange) Contains(t time.Time) bool {
	d := CalendarDate(t.In(r.Start.Location()))
	return !d.Before(r.Start) && !d.After(r.End)
}

// BucketTasksByDay indexa las tareas por el día de calendario de su fecha de
// vencimiento, para cada día del rango visible. Todos los días del rango
// aparecen en el mapa, aunque no tengan tareas (slice vacío, no ausente).
// Las tareas fuera del rango se descartan; dentro de cada día se conserva el
// orden relativo de la entrada. La función es pura: no muta las tareas.
func BucketTasksByDay(tasks []*Task, r VisibleRange) map[time.Time][]*Task {
	buckets := make(map[time.Time][]*Task)
	for _, day := range r.Days() {
		buckets[day] = []*Task{}
	}

	for _, t := range tasks {
		day := CalendarDate(t.DueDate.In(r.Start.Location()))
		if _, ok := buckets[day]; ok {
			buckets[day] = append(buckets[day], t)
		}
	}

	return buckets
}

// DaySummary es la vista truncada de una celda: hasta MaxVisibleTasksPerDay
// tareas más el número de tareas restantes. Es una preocupación de
// presentación construida sobre el resultado completo del bucketer.
type DaySummary struct {
	Day       time.Time `json:"day"`
	Tasks     []*Task   `json:"tasks"`
	Remaining int       `json:"remaining"`
	Total     int       `json:"total"`
}

// SummarizeDay trunca el contenido de un día a lo que cabe en la celda.
func SummarizeDay(day time.Time, tasks []*Task) DaySummary {
	visible := tasks
	if len(visible) > MaxVisibleTasksPerDay {
		visible = visible[:MaxVisibleTasksPerDay]
	}
	return DaySummary{
		Day:       day,
		Tasks:     visible,
		Remaining: len(tasks) - len(visible),
		Total:     len(tasks),
	}
}
