package pdfdoc

import (
	"strconv"
	"strings"
)

var glyphNames = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#', "dollar": '$',
	"percent": '%', "ampersand": '&', "quotesingle": '\'', "quoteright": '’',
	"parenleft": '(', "parenright": ')', "asterisk": '*', "plus": '+', "comma": ',',
	"hyphen": '-', "minus": '−', "period": '.', "slash": '/', "colon": ':',
	"semicolon": ';', "less": '<', "equal": '=', "greater": '>', "question": '?',
	"at": '@', "bracketleft": '[', "backslash": '\\', "bracketright": ']',
	"asciicircum": '^', "underscore": '_', "grave": '`', "quoteleft": '‘',
	"braceleft": '{', "bar": '|', "braceright": '}', "asciitilde": '~',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"bullet": '•', "endash": '–', "emdash": '—', "quotedblleft": '“',
	"quotedblright": '”', "quotesinglbase": '‚', "quotedblbase": '„',
	"ellipsis": '…', "dagger": '†', "daggerdbl": '‡', "periodcentered": '·',
	"copyright": '©', "registered": '®', "trademark": '™', "degree": '°',
	"section": '§', "paragraph": '¶', "nbspace": ' ', "euro": '€',
	"sterling": '£', "yen": '¥', "cent": '¢',
	"aacute": 'á', "agrave": 'à', "acircumflex": 'â', "adieresis": 'ä', "atilde": 'ã', "aring": 'å',
	"eacute": 'é', "egrave": 'è', "ecircumflex": 'ê', "edieresis": 'ë',
	"iacute": 'í', "igrave": 'ì', "icircumflex": 'î', "idieresis": 'ï',
	"oacute": 'ó', "ograve": 'ò', "ocircumflex": 'ô', "odieresis": 'ö', "otilde": 'õ', "oslash": 'ø',
	"uacute": 'ú', "ugrave": 'ù', "ucircumflex": 'û', "udieresis": 'ü',
	"ccedilla": 'ç', "ntilde": 'ñ', "yacute": 'ý', "ydieresis": 'ÿ', "germandbls": 'ß',
	"Aacute": 'Á', "Agrave": 'À', "Acircumflex": 'Â', "Adieresis": 'Ä', "Atilde": 'Ã', "Aring": 'Å',
	"Eacute": 'É', "Egrave": 'È', "Ecircumflex": 'Ê', "Edieresis": 'Ë',
	"Iacute": 'Í', "Oacute": 'Ó', "Odieresis": 'Ö', "Oslash": 'Ø',
	"Uacute": 'Ú', "Udieresis": 'Ü', "Ccedilla": 'Ç', "Ntilde": 'Ñ',
}

var ligatures = map[string]string{
	"fi": "fi", "fl": "fl", "ff": "ff", "ffi": "ffi", "ffl": "ffl",
}

// glyphText maps a glyph name to its text using the Adobe naming
// conventions: single letters, uniXXXX, uXXXX and common names.
func glyphText(name string) (string, bool) {
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	if len(name) == 1 {
		c := name[0]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			return name, true
		}
	}
	if r, ok := glyphNames[name]; ok {
		return string(r), true
	}
	if s, ok := ligatures[name]; ok {
		return s, true
	}
	if strings.HasPrefix(name, "uni") && len(name) >= 7 {
		var b strings.Builder
		for i := 3; i+4 <= len(name); i += 4 {
			v, err := strconv.ParseUint(name[i:i+4], 16, 32)
			if err != nil {
				return "", false
			}
			b.WriteRune(rune(v))
		}
		return b.String(), true
	}
	if strings.HasPrefix(name, "u") && len(name) >= 5 && len(name) <= 7 {
		if v, err := strconv.ParseUint(name[1:], 16, 32); err == nil {
			return string(rune(v)), true
		}
	}
	return "", false
}
