package outsignal

import (
	"strconv"
	"unicode/utf8"
)

// Name identifies one output signal file.
type Name struct {
	ObservationID uint64
	StartTime     uint64
	TileID        uint64
	SignalChain   byte // RF input, typically 'X' or 'Y'
}

// FileName formats "{obs}_{start}_{tile}_{chain}.bin". Values are not
// checked.
func FileName(observationID, startTime, tileID uint64, signalChain byte) string {
	b := make([]byte, 0, 48)
	b = strconv.AppendUint(b, observationID, 10)
	b = append(b, '_')
	b = strconv.AppendUint(b, startTime, 10)
	b = append(b, '_')
	b = strconv.AppendUint(b, tileID, 10)
	b = append(b, '_', signalChain)
	b = append(b, ".bin"...)
	return string(b)
}

func (n Name) String() string {
	return FileName(n.ObservationID, n.StartTime, n.TileID, n.SignalChain)
}

// ParseFileName recognises the output signal filename grammar
//
//	DIGITS "_" DIGITS "_" DIGITS "_" "." ANY "bin"
//
// where ANY is a single character other than newline. The chain position
// only accepts a literal '.', so names built with a polarisation letter such
// as 'X' do not match and a match always has SignalChain '.'. This mirrors
// the pattern the pipeline has always published; see DESIGN.md before
// changing it. Numeric fields that overflow uint64 do not match.
func ParseFileName(s string) (Name, bool) {
	var n Name
	rest := s
	for _, dst := range []*uint64{&n.ObservationID, &n.StartTime, &n.TileID} {
		v, tail, ok := leadingUint(rest)
		if !ok || len(tail) == 0 || tail[0] != '_' {
			return Name{}, false
		}
		*dst = v
		rest = tail[1:]
	}
	if len(rest) == 0 || rest[0] != '.' {
		return Name{}, false
	}
	n.SignalChain = rest[0]
	rest = rest[1:]
	r, size := utf8.DecodeRuneInString(rest)
	if size == 0 || r == '\n' {
		return Name{}, false
	}
	if rest[size:] != "bin" {
		return Name{}, false
	}
	return n, true
}

// leadingUint consumes a non-empty run of ASCII digits.
func leadingUint(s string) (uint64, string, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, false
	}
	v, err := strconv.ParseUint(s[:i], 10, 64)
	if err != nil {
		return 0, s, false
	}
	return v, s[i:], true
}
