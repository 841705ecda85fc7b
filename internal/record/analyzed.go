package record

// Колонки, добавляемые анализом к raw.csv
const (
	PeopleField       = "people"
	OrganizationField = "organization"
)

// Analyzed запись с очищенным эссе и извлечёнными именами
type Analyzed struct {
	Record        Record
	People        []string
	Organizations []string
}

func AnalyzedFields() []string {
	return append(Fields(), PeopleField, OrganizationField)
}

// Values значения в порядке AnalyzedFields(); списки кодируются JSON-массивами
func (a Analyzed) Values() []string {
	return append(a.Record.Values(), renderList(a.People), renderList(a.Organizations))
}

func renderList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	list := make([]interface{}, len(items))
	for i, s := range items {
		list[i] = s
	}
	return render(list)
}
