package data

// Schema describes the structure of a dataset.
type Schema struct {
	Columns []string          `json:"columns"`
	DTypes  map[string]string `json:"dtypes"`
}

// SchemaOf lists the dataset's columns with their inferred types.
func SchemaOf(d *Dataset) Schema {
	s := Schema{
		Columns: make([]string, 0, len(d.Columns)),
		DTypes:  make(map[string]string, len(d.Columns)),
	}
	for _, c := range d.Columns {
		s.Columns = append(s.Columns, c.Name)
		s.DTypes[c.Name] = c.Kind.String()
	}
	return s
}
