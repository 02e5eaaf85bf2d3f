package sgcarmart

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/titanous/json5"

	"carlist-scraper/models"
)

// genericFields are looked up with the tolerant key/value pattern. The
// names double as the CSV column names.
var genericFields = []string{
	models.FieldPrice,
	models.FieldTransmission,
	models.FieldFuelType,
	models.FieldEngineCapacity,
	models.FieldCurbWeight,
	models.FieldPower,
	models.FieldRoadTax,
	models.FieldDeregistrationValue,
	models.FieldCOE,
	models.FieldOMV,
	models.FieldARF,
	models.FieldMileage,
	models.FieldOwners,
	models.FieldDealer,
	models.FieldDeregValue,
	models.FieldEngineCap,
}

var (
	fieldPatterns = buildFieldPatterns(genericFields)

	carModelRegexp = regexp.MustCompile(`(?i)"car_model"\s*:\s*"([^"]+)"`)
	regDateRegexp  = regexp.MustCompile(`(?i)"reg_date"\s*:\s*"([^"]+)"`)

	vehicleObjectRegexp = regexp.MustCompile(`(?is)"type_of_vehicle"\s*:\s*\{(.*?)\}`)
	vehicleQuotedRegexp = regexp.MustCompile(`(?i)"type_of_vehicle"\s*:\s*"([^"]+)"`)
	vehicleBareRegexp   = regexp.MustCompile(`(?i)"type_of_vehicle"\s*:\s*([^,"\}\r\n]+)`)
	trailingCommaRegexp = regexp.MustCompile(`,\s*\}$`)

	parenRegexp      = regexp.MustCompile(`\([^)]*\)`)
	currencyRegexp   = regexp.MustCompile(`[,$]`)
	unitSuffixRegexp = regexp.MustCompile(`(?i)\s*(/yr|yr|km|cc|as of today|/)`)
	nonNumericRegexp = regexp.MustCompile(`[^\d.]`)
)

func buildFieldPatterns(keys []string) map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(keys))
	for _, k := range keys {
		out[k] = regexp.MustCompile(`(?i)["']?` + regexp.QuoteMeta(k) + `["']?\s*:\s*["']?([^"'}<\n]+)`)
	}
	return out
}

// ParsePayload extracts every known field from normalized payload text.
func ParsePayload(text string) models.CarRecord {
	rec := models.CarRecord{}
	for k, v := range extractGenericFields(text) {
		rec.Set(k, v)
	}
	rec.Set(models.FieldRegDate, firstGroup(regDateRegexp, text))
	rec.Set(models.FieldCarModel, firstGroup(carModelRegexp, text))
	rec.Set(models.FieldTypeOfVehicle, extractVehicleType(text))
	return rec
}

func extractGenericFields(text string) map[string]string {
	out := make(map[string]string, len(genericFields))
	for _, key := range genericFields {
		pat := fieldPatterns[key]

		var raw string
		if key == models.FieldMileage {
			// the listing summary and the detail panel both carry mileage;
			// the second one is the current reading
			matches := pat.FindAllStringSubmatch(text, -1)
			switch {
			case len(matches) >= 2:
				raw = matches[1][1]
			case len(matches) == 1:
				raw = matches[0][1]
			default:
				continue
			}
		} else {
			m := pat.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			raw = m[1]
		}

		value := strings.TrimSpace(parenRegexp.ReplaceAllString(strings.TrimSpace(raw), ""))
		out[key] = CleanValue(value)
	}
	return out
}

// CleanValue normalizes an extracted value. Anything containing a digit is
// reduced to digits and decimal points after currency markers and unit
// suffixes are removed; other values are only trimmed.
func CleanValue(value string) string {
	if !strings.ContainsFunc(value, unicode.IsDigit) {
		return strings.TrimSpace(value)
	}
	clean := currencyRegexp.ReplaceAllString(value, "")
	clean = unitSuffixRegexp.ReplaceAllString(clean, "")
	return nonNumericRegexp.ReplaceAllString(clean, "")
}

// vehicleTypeForm is one known markup shape for the vehicle type. Forms
// are tried in order; the first to yield a value wins.
type vehicleTypeForm struct {
	name  string
	parse func(text string) (string, bool)
}

var vehicleTypeForms = []vehicleTypeForm{
	{name: "object", parse: parseVehicleTypeObject},
	{name: "quoted", parse: func(text string) (string, bool) {
		v := strings.TrimSpace(firstGroup(vehicleQuotedRegexp, text))
		return v, v != ""
	}},
	{name: "bare", parse: func(text string) (string, bool) {
		v := strings.TrimSpace(firstGroup(vehicleBareRegexp, text))
		return v, v != ""
	}},
}

func extractVehicleType(text string) string {
	for _, form := range vehicleTypeForms {
		if v, ok := form.parse(text); ok {
			return v
		}
	}
	return ""
}

func parseVehicleTypeObject(text string) (string, bool) {
	m := vehicleObjectRegexp.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}

	obj := trailingCommaRegexp.ReplaceAllString("{"+m[1]+"}", "}")
	obj = strings.ReplaceAll(obj, `\"`, `"`)
	obj = strings.ReplaceAll(obj, `'`, `"`)
	if strings.Count(obj, "{") != strings.Count(obj, "}") {
		obj += "}"
	}

	var parsed map[string]interface{}
	if err := json5.Unmarshal([]byte(obj), &parsed); err != nil {
		return "", false
	}
	label, ok := parsed["text"].(string)
	if !ok {
		return "", false
	}
	label = strings.TrimSpace(label)
	return label, label != ""
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// NormalizePayload decodes backslash escapes in script text, then turns
// escaped slashes into plain ones and collapses doubled backslashes.
func NormalizePayload(s string) string {
	s = decodeEscapes(s)
	s = strings.ReplaceAll(s, `\/`, `/`)
	return strings.ReplaceAll(s, `\\`, `\`)
}

// decodeEscapes interprets the escape sequences a script literal may carry.
// Unknown sequences are kept verbatim, backslash included.
func decodeEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			i++
			continue
		}

		next := s[i+1]
		switch next {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case 'a':
			b.WriteByte('\a')
		case '\\', '\'', '"':
			b.WriteByte(next)
		case '\n':
			// line continuation
		case '0', '1', '2', '3', '4', '5', '6', '7':
			r, width := octalRune(s, i+1)
			b.WriteRune(r)
			i += 1 + width
			continue
		case 'x':
			if r, ok := hexRune(s, i+2, 2); ok {
				b.WriteRune(r)
				i += 4
				continue
			}
			b.WriteString(s[i : i+2])
		case 'u':
			r, width, ok := unicodeEscape(s, i)
			if ok {
				b.WriteRune(r)
				i += width
				continue
			}
			b.WriteString(s[i : i+2])
		case 'U':
			if r, ok := hexRune(s, i+2, 8); ok && utf8.ValidRune(r) {
				b.WriteRune(r)
				i += 10
				continue
			}
			b.WriteString(s[i : i+2])
		default:
			b.WriteString(s[i : i+2])
		}
		i += 2
	}
	return b.String()
}

// octalRune reads up to three octal digits starting at s[start].
func octalRune(s string, start int) (rune, int) {
	var r rune
	n := 0
	for n < 3 && start+n < len(s) && s[start+n] >= '0' && s[start+n] <= '7' {
		r = r*8 + rune(s[start+n]-'0')
		n++
	}
	return r, n
}

// unicodeEscape decodes \uXXXX at s[i:], joining a following low surrogate
// when the first unit is a high surrogate.
func unicodeEscape(s string, i int) (rune, int, bool) {
	r, ok := hexRune(s, i+2, 4)
	if !ok {
		return 0, 0, false
	}
	if utf16.IsSurrogate(r) && i+12 <= len(s) && s[i+6] == '\\' && s[i+7] == 'u' {
		if lo, ok := hexRune(s, i+8, 4); ok {
			if joined := utf16.DecodeRune(r, lo); joined != utf8.RuneError {
				return joined, 12, true
			}
		}
	}
	return r, 6, true
}

func hexRune(s string, start, n int) (rune, bool) {
	if start+n > len(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(s[start:start+n], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
