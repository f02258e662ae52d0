package protocol

import "io"

// Printer writes simple formatted text to a byte sink such as the soft serial
// link. It avoids fmt so it stays small enough for 8-bit targets.
type Printer struct {
	w io.ByteWriter
}

// NewPrinter creates a Printer writing to w
func NewPrinter(w io.ByteWriter) *Printer {
	return &Printer{w: w}
}

// HexChar converts the low four bits of value into an upper case hex digit
func HexChar(value uint8) byte {
	value &= 0x0F
	if value < 10 {
		return '0' + value
	}
	return 'A' + value - 10
}

// Print writes a string
func (p *Printer) Print(s string) {
	for i := 0; i < len(s); i++ {
		p.w.WriteByte(s[i])
	}
}

// Int writes an unsigned 16 bit value in decimal without leading zeros
func (p *Printer) Int(value uint16) {
	if value == 0 {
		p.w.WriteByte('0')
		return
	}
	emit := false
	for divisor := uint16(10000); divisor > 0; divisor /= 10 {
		digit := value / divisor
		value %= divisor
		if digit > 0 || emit {
			p.w.WriteByte('0' + byte(digit))
			emit = true
		}
	}
}

// Hex writes an unsigned 16 bit value as exactly four hex digits
func (p *Printer) Hex(value uint16) {
	p.w.WriteByte(HexChar(uint8(value >> 12)))
	p.w.WriteByte(HexChar(uint8(value >> 8)))
	p.w.WriteByte(HexChar(uint8(value >> 4)))
	p.w.WriteByte(HexChar(uint8(value)))
}

// Format writes a format string with a small subset of printf verbs:
//
//	%% - a literal '%' (also emitted for a '%' ending the string)
//	%c - a single byte
//	%u - an unsigned 16 bit value in decimal
//	%x - an unsigned 16 bit value as four hex digits
//	%s - a string
//
// Unknown verbs and verbs without a matching argument produce no output.
func (p *Printer) Format(format string, args ...interface{}) {
	next := 0
	arg := func() (interface{}, bool) {
		if next >= len(args) {
			return nil, false
		}
		a := args[next]
		next++
		return a, true
	}

	for i := 0; i < len(format); i++ {
		ch := format[i]
		if ch != '%' {
			p.w.WriteByte(ch)
			continue
		}
		if i+1 >= len(format) {
			p.w.WriteByte('%')
			return
		}
		i++
		switch format[i] {
		case '%':
			p.w.WriteByte('%')
		case 'c':
			if a, ok := arg(); ok {
				p.w.WriteByte(byte(toUint16(a)))
			}
		case 'u':
			if a, ok := arg(); ok {
				p.Int(toUint16(a))
			}
		case 'x':
			if a, ok := arg(); ok {
				p.Hex(toUint16(a))
			}
		case 's':
			if a, ok := arg(); ok {
				if s, ok := a.(string); ok {
					p.Print(s)
				}
			}
		}
	}
}

// toUint16 truncates the integer argument types Format accepts
func toUint16(v interface{}) uint16 {
	switch val := v.(type) {
	case uint8:
		return uint16(val)
	case uint16:
		return val
	case uint32:
		return uint16(val)
	case uint:
		return uint16(val)
	case int:
		return uint16(val)
	case int8:
		return uint16(val)
	case int16:
		return uint16(val)
	case int32:
		return uint16(val)
	default:
		return 0
	}
}
