package version

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	trunkVersionConstant = "trunk"
	numericDotConstant   = '.'
)

// Direction describes how a target version relates to the current one.
type Direction string

// Supported directions.
const (
	DirectionNone      Direction = "none"
	DirectionUpgrade   Direction = "upgrade"
	DirectionDowngrade Direction = "downgrade"
	DirectionRetarget  Direction = "retarget"
)

type component struct {
	numeric bool
	number  uint64
	text    string
}

// Compare orders two version strings loosely, returning -1, 0, or 1.
//
// Strings are split into runs of digits and runs of letters; any other
// character delimits components. Numeric runs compare by value, while a
// non-numeric run always orders below a numeric one. When one sequence is a
// prefix of the other the shorter one orders lower, so "1.2" < "1.2.0".
func Compare(left string, right string) int {
	leftComponents := splitComponents(left)
	rightComponents := splitComponents(right)

	for index := 0; index < len(leftComponents) && index < len(rightComponents); index++ {
		if result := compareComponents(leftComponents[index], rightComponents[index]); result != 0 {
			return result
		}
	}

	switch {
	case len(leftComponents) < len(rightComponents):
		return -1
	case len(leftComponents) > len(rightComponents):
		return 1
	default:
		return 0
	}
}

// IsNumericTag reports whether tag consists only of digits and dots and contains at least one digit.
func IsNumericTag(tag string) bool {
	if len(tag) == 0 {
		return false
	}
	containsDigit := false
	for _, character := range tag {
		switch {
		case character >= '0' && character <= '9':
			containsDigit = true
		case character == numericDotConstant:
		default:
			return false
		}
	}
	return containsDigit
}

// DirectionOf classifies the move from current to target.
// Equal strings are DirectionNone; a move to or from trunk is DirectionRetarget.
func DirectionOf(current string, target string) Direction {
	if current == target {
		return DirectionNone
	}
	if strings.EqualFold(current, trunkVersionConstant) || strings.EqualFold(target, trunkVersionConstant) {
		return DirectionRetarget
	}
	switch Compare(current, target) {
	case -1:
		return DirectionUpgrade
	case 1:
		return DirectionDowngrade
	default:
		return DirectionRetarget
	}
}

func splitComponents(value string) []component {
	components := make([]component, 0)
	var builder strings.Builder
	currentIsDigit := false

	flush := func() {
		if builder.Len() == 0 {
			return
		}
		text := builder.String()
		builder.Reset()
		if currentIsDigit {
			parsed, parseError := strconv.ParseUint(text, 10, 64)
			if parseError == nil {
				components = append(components, component{numeric: true, number: parsed, text: text})
				return
			}
		}
		components = append(components, component{text: strings.ToLower(text)})
	}

	for _, character := range value {
		isDigit := unicode.IsDigit(character)
		isLetter := unicode.IsLetter(character)
		if !isDigit && !isLetter {
			flush()
			continue
		}
		if builder.Len() > 0 && isDigit != currentIsDigit {
			flush()
		}
		currentIsDigit = isDigit
		builder.WriteRune(character)
	}
	flush()

	return components
}

func compareComponents(left component, right component) int {
	switch {
	case left.numeric && right.numeric:
		switch {
		case left.number < right.number:
			return -1
		case left.number > right.number:
			return 1
		default:
			return 0
		}
	case left.numeric:
		return 1
	case right.numeric:
		return -1
	default:
		return strings.Compare(left.text, right.text)
	}
}
