package dataset

import "github.com/matzehuels/graphypad/pkg/errors"

// DerivedName is the default name for a column derived from source.
func DerivedName(source string) string { return source + "_calc" }

// Derive returns a copy of ds with a new column name = source * factor.
// Missing cells stay missing. The source must be numeric and name must not
// already exist. ds itself is left untouched.
func Derive(ds *Dataset, source, name string, factor float64) (*Dataset, error) {
	if name == "" {
		name = DerivedName(source)
	}
	if err := errors.ValidateColumnName(name); err != nil {
		return nil, err
	}
	src, ok := ds.Column(source)
	if !ok {
		return nil, errors.Column(errors.ErrCodeInvalidColumn, source, "unknown column %q", source)
	}
	if !src.IsNumeric() {
		return nil, errors.Column(errors.ErrCodeInvalidColumn, source, "column %q is not numeric", source)
	}
	if ds.Has(name) {
		return nil, errors.Column(errors.ErrCodeInvalidColumn, name, "column %q already exists", name)
	}

	vals := make([]Value, src.Len())
	for i, v := range src.Values {
		if v.Kind == Number {
			vals[i] = Num(v.Num * factor)
		}
	}

	out := ds.Clone()
	out.Columns = append(out.Columns, &Column{Name: name, Values: vals})
	out.Derivations = append(out.Derivations, Derivation{Name: name, Source: source, Factor: factor})
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
