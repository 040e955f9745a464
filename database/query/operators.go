package query

// Operators.
const (
	Equals                  uint8 = iota // int
	GreaterThan                          // int
	GreaterThanOrEqual                   // int
	LessThan                             // int
	LessThanOrEqual                      // int
	FloatEquals                          // float
	FloatGreaterThan                     // float
	FloatGreaterThanOrEqual              // float
	FloatLessThan                        // float
	FloatLessThanOrEqual                 // float
	SameAs                               // string
	Contains                             // string
	StartsWith                           // string
	EndsWith                             // string
	In                                   // stringSlice
	Matches                              // regex
	Is                                   // bool: accepts 1, t, T, TRUE, true, True, 0, f, F, FALSE
	Exists                               // any

	errorPresent uint8 = 255
)

var operatorNames = map[string]uint8{
	"==":         Equals,
	">":          GreaterThan,
	">=":         GreaterThanOrEqual,
	"<":          LessThan,
	"<=":         LessThanOrEqual,
	"f==":        FloatEquals,
	"f>":         FloatGreaterThan,
	"f>=":        FloatGreaterThanOrEqual,
	"f<":         FloatLessThan,
	"f<=":        FloatLessThanOrEqual,
	"sameas":     SameAs,
	"s==":        SameAs,
	"contains":   Contains,
	"co":         Contains,
	"startswith": StartsWith,
	"sw":         StartsWith,
	"endswith":   EndsWith,
	"ew":         EndsWith,
	"in":         In,
	"matches":    Matches,
	"re":         Matches,
	"is":         Is,
	"exists":     Exists,
	"ex":         Exists,
}

var primaryNames = make(map[uint8]string)

func init() {
	for opName, opID := range operatorNames {
		name, ok := primaryNames[opID]
		if ok {
			if len(name) < len(opName) {
				primaryNames[opID] = opName
			}
		} else {
			primaryNames[opID] = opName
		}
	}
}

func getOpName(operator uint8) string {
	name, ok := primaryNames[operator]
	if ok {
		return name
	}
	return "[unknown]"
}

// ParseOperator returns the operator for the given name, as used in Print.
func ParseOperator(name string) (operator uint8, ok bool) {
	operator, ok = operatorNames[name]
	return
}
