package parcel

// Quantity describes a field the integrators ask for.
type Quantity struct {
	Name     string
	LongName string
	Units    string
}

// Names of the quantities used by the integrators.
const (
	U = "u"
	V = "v"
	W = "w"
	T = "t"
)

var quantities = map[string]Quantity{
	U: {U, "eastward wind", "m/s"},
	V: {V, "northward wind", "m/s"},
	W: {W, "vertical velocity", "units/s"},
	T: {T, "air temperature", "K"},
}

// Lookup returns the description of a known quantity.
func Lookup(name string) (Quantity, bool) {
	q, ok := quantities[name]
	return q, ok
}

// Quantities lists the known quantities.
func Quantities() []Quantity {
	return []Quantity{quantities[U], quantities[V], quantities[W], quantities[T]}
}
