package validate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pgguru/pgbackrest/internal/cfgerror"
	"github.com/pgguru/pgbackrest/internal/l10n"
	"github.com/pgguru/pgbackrest/internal/ruletable"
)

// TypedValue is the tagged union every materialised option value carries:
// bool, i64, string, list<string>, or map<string,string>. Only the field
// matching Type is meaningful.
type TypedValue struct {
	Type ruletable.OptionType
	Bool bool
	Int  int64
	Str  string
	List []string
	Hash map[string]string
}

var sizePattern = regexp.MustCompile(`(?i)^([0-9]+)(kb|k|mb|m|gb|g|tb|t|pb|p|b)?$`)

var sizeMultiplier = map[string]int64{
	"":   1,
	"b":  1,
	"k":  1024,
	"kb": 1024,
	"m":  1024 * 1024,
	"mb": 1024 * 1024,
	"g":  1024 * 1024 * 1024,
	"gb": 1024 * 1024 * 1024,
	"t":  1024 * 1024 * 1024 * 1024,
	"tb": 1024 * 1024 * 1024 * 1024,
	"p":  1024 * 1024 * 1024 * 1024 * 1024,
	"pb": 1024 * 1024 * 1024 * 1024 * 1024,
}

// ConvertToByte parses a size-type string against the grammar
// `^[0-9]+(kb|k|mb|m|gb|g|tb|t|pb|p|b)?$`, case-insensitive, with
// multipliers b=1, k=1024, m=1024², g=1024³, t=1024⁴, p=1024⁵.
func ConvertToByte(raw string) (int64, error) {
	m := sizePattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, cfgerror.New(cfgerror.KindOptionInvalidValue, l10n.T("'%s' is not a valid size", raw))
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, cfgerror.New(cfgerror.KindOptionInvalidValue, l10n.T("'%s' is not a valid size", raw))
	}
	return n * sizeMultiplier[strings.ToLower(m[2])], nil
}

// parseTyped parses raw (a single string token — for list/hash types the
// caller passes the joined or multi-element source through parseValue
// instead) into a TypedValue of the given type.
func parseTyped(optType ruletable.OptionType, raw string, negate bool) (*TypedValue, error) {
	switch optType {
	case ruletable.TypeBoolean:
		return &TypedValue{Type: optType, Bool: !negate}, nil

	case ruletable.TypeInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, cfgerror.New(cfgerror.KindOptionInvalidValue, l10n.T("'%s' is not a valid integer", raw))
		}
		return &TypedValue{Type: optType, Int: n}, nil

	case ruletable.TypeSize:
		n, err := ConvertToByte(raw)
		if err != nil {
			return nil, err
		}
		return &TypedValue{Type: optType, Int: n}, nil

	case ruletable.TypeTime:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, cfgerror.New(cfgerror.KindOptionInvalidValue, l10n.T("'%s' is not a valid time", raw))
		}
		return &TypedValue{Type: optType, Int: int64(f * 1000)}, nil

	case ruletable.TypePath:
		if raw == "" {
			return nil, cfgerror.New(cfgerror.KindOptionInvalidValue, l10n.T("path option value must not be empty"))
		}
		if !strings.HasPrefix(raw, "/") {
			return nil, cfgerror.New(cfgerror.KindOptionInvalidValue, l10n.T("'%s' must be an absolute path", raw))
		}
		if strings.Contains(raw, "//") {
			return nil, cfgerror.New(cfgerror.KindOptionInvalidValue, l10n.T("'%s' must not contain '//'", raw))
		}
		trimmed := raw
		if trimmed != "/" {
			trimmed = strings.TrimSuffix(trimmed, "/")
		}
		return &TypedValue{Type: optType, Str: trimmed}, nil

	case ruletable.TypeString:
		if raw == "" {
			return nil, cfgerror.New(cfgerror.KindOptionInvalidValue, l10n.T("string option value must not be empty"))
		}
		return &TypedValue{Type: optType, Str: raw}, nil

	default:
		return nil, cfgerror.New(cfgerror.KindAssertError, l10n.T("parseTyped called with unsupported scalar type"))
	}
}

// parseList builds a TypedValue for a list-typed option from its raw
// values slice, as-is.
func parseList(values []string) *TypedValue {
	out := append([]string(nil), values...)
	return &TypedValue{Type: ruletable.TypeList, List: out}
}

// parseHash builds a TypedValue for a hash-typed option: every token must
// be "key=value"; duplicate keys keep the last value.
func parseHash(values []string) (*TypedValue, error) {
	h := map[string]string{}
	for _, tok := range values {
		k, v, ok := strings.Cut(tok, "=")
		if !ok {
			return nil, cfgerror.New(cfgerror.KindOptionInvalidValue, l10n.T("'%s' is not a valid 'key=value' pair", tok))
		}
		h[k] = v
	}
	return &TypedValue{Type: ruletable.TypeHash, Hash: h}, nil
}

// AsDependString renders a TypedValue the way a Depend allow-list
// comparison needs: boolean coerces to "0"/"1"; everything else uses its
// natural string form.
func AsDependString(v *TypedValue) string {
	if v == nil {
		return ""
	}
	switch v.Type {
	case ruletable.TypeBoolean:
		if v.Bool {
			return "1"
		}
		return "0"
	case ruletable.TypeInteger, ruletable.TypeSize, ruletable.TypeTime:
		return strconv.FormatInt(v.Int, 10)
	default:
		return v.Str
	}
}
