package analysis

import (
	"chronam-essays/internal/record"
)

// Derived производные колонки одного эссе, привязанные к ключу записи
type Derived struct {
	Key           string
	Clean         string
	People        []string
	Organizations []string
	Failed        bool
}

// JoinByKey соединяет записи с производными колонками по нормализованному raw_lccn.
// Для каждого ключа производные берутся в порядке поступления (FIFO), поэтому
// повторяющиеся LCCN и перестановки не сдвигают строки. Запись без производных
// сохраняется с пустым эссе и пустыми списками.
func JoinByKey(records []record.Record, derived []Derived) []record.Analyzed {
	queues := make(map[string][]Derived, len(derived))
	for _, d := range derived {
		queues[d.Key] = append(queues[d.Key], d)
	}

	out := make([]record.Analyzed, 0, len(records))
	for _, rec := range records {
		key := rec.Key()

		var d Derived
		if q := queues[key]; len(q) > 0 {
			d = q[0]
			queues[key] = q[1:]
		}

		out = append(out, record.Analyzed{
			Record:        rec.With("essay", d.Clean),
			People:        d.People,
			Organizations: d.Organizations,
		})
	}
	return out
}
