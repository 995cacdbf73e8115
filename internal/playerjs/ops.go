package playerjs

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/robertkrimen/otto"

	"github.com/famomatic/ytx/internal/types"
)

// fallback solves challenges without the ejs runtime: signatures via the
// extracted reverse/splice/swap table, n via the mined function body run
// in a lightweight VM. It covers older player builds and lets extraction
// proceed when the solver modules cannot be fetched.
type fallback struct {
	code []byte
}

func newFallback(code string) *fallback {
	return &fallback{code: []byte(code)}
}

// Solve answers one challenge of the given kind.
func (f *fallback) Solve(kind, challenge string) (string, error) {
	switch kind {
	case KindSig:
		return f.signature(challenge)
	case KindN:
		return f.n(challenge)
	}
	return "", fmt.Errorf("%w: unknown challenge kind %q", types.ErrDecipher, kind)
}

type sigOp func([]byte) []byte

func spliceOp(pos int) sigOp {
	return func(bs []byte) []byte {
		if pos < 0 || pos > len(bs) {
			return bs
		}
		return bs[pos:]
	}
}

func swapOp(arg int) sigOp {
	return func(bs []byte) []byte {
		if len(bs) == 0 {
			return bs
		}
		pos := arg % len(bs)
		bs[0], bs[pos] = bs[pos], bs[0]
		return bs
	}
}

func reverseOp(bs []byte) []byte {
	l, r := 0, len(bs)-1
	for l < r {
		bs[l], bs[r] = bs[r], bs[l]
		l++
		r--
	}
	return bs
}

const (
	jsVarStr   = "[a-zA-Z_\\$][a-zA-Z_0-9]*"
	reverseStr = ":function\\(a\\)\\{" +
		"(?:return )?a\\.reverse\\(\\)" +
		"\\}"
	spliceStr = ":function\\(a,b\\)\\{" +
		"a\\.splice\\(0,b\\)" +
		"\\}"
	swapStr = ":function\\(a,b\\)\\{" +
		"var c=a\\[0\\];a\\[0\\]=a\\[b(?:%a\\.length)?\\];a\\[b(?:%a\\.length)?\\]=c(?:;return a)?" +
		"\\}"
)

var (
	actionsObjRegexp = regexp.MustCompile(fmt.Sprintf(
		"(?:var|let|const)\\s+(%s)=\\{((?:(?:%s%s|%s%s|%s%s),?\\n?)+)\\}\\s*;?",
		jsVarStr, jsVarStr, swapStr, jsVarStr, spliceStr, jsVarStr, reverseStr))
	reverseRegexp = regexp.MustCompile(fmt.Sprintf("(?m)(?:^|,)(%s)%s", jsVarStr, reverseStr))
	spliceRegexp  = regexp.MustCompile(fmt.Sprintf("(?m)(?:^|,)(%s)%s", jsVarStr, spliceStr))
	swapRegexp    = regexp.MustCompile(fmt.Sprintf("(?m)(?:^|,)(%s)%s", jsVarStr, swapStr))

	// The dispatch function splits its own argument, so a backreference
	// pins the split/join to the same identifier whatever it is named.
	dispatchBodyRegexp = regexp2.MustCompile(
		`function(?:\s+`+jsVarStr+`)?\(\s*(?<arg>`+jsVarStr+`)\s*\)\{`+
			`\k<arg>=\k<arg>\.split\(""\);`+
			`(?<body>.*?)`+
			`return \k<arg>\.join\(""\)\}`,
		regexp2.None)
)

func (f *fallback) signature(s string) (string, error) {
	ops, err := f.parseSigOps()
	if err != nil {
		return "", err
	}
	bs := []byte(s)
	for _, op := range ops {
		bs = op(bs)
	}
	return string(bs), nil
}

func (f *fallback) parseSigOps() ([]sigOp, error) {
	objResult := actionsObjRegexp.FindSubmatch(f.code)
	body, bodyErr := f.dispatchBody()
	if len(objResult) < 3 || bodyErr != nil {
		return nil, fmt.Errorf("%w: signature transform table not found in player script", types.ErrDecipher)
	}

	obj := string(objResult[1])
	objBody := objResult[2]

	var reverseKey, spliceKey, swapKey string
	if m := reverseRegexp.FindSubmatch(objBody); len(m) > 1 {
		reverseKey = string(m[1])
	}
	if m := spliceRegexp.FindSubmatch(objBody); len(m) > 1 {
		spliceKey = string(m[1])
	}
	if m := swapRegexp.FindSubmatch(objBody); len(m) > 1 {
		swapKey = string(m[1])
	}

	keys := regexp.QuoteMeta(reverseKey) + "|" + regexp.QuoteMeta(spliceKey) + "|" + regexp.QuoteMeta(swapKey)
	callRegexp, err := regexp.Compile(fmt.Sprintf(
		`(?:[a-zA-Z_\$][a-zA-Z_0-9]*=)?%s(?:\.(%s)|\[(?:"(%s)"|'(%s)')\])\([a-zA-Z_\$][a-zA-Z_0-9]*,(\d+)\)`,
		regexp.QuoteMeta(obj), keys, keys, keys))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrDecipher, err)
	}

	var ops []sigOp
	for _, m := range callRegexp.FindAllStringSubmatch(body, -1) {
		key := m[1]
		if key == "" {
			key = m[2]
		}
		if key == "" {
			key = m[3]
		}
		arg, _ := strconv.Atoi(m[4])
		switch key {
		case reverseKey:
			ops = append(ops, reverseOp)
		case swapKey:
			ops = append(ops, swapOp(arg))
		case spliceKey:
			ops = append(ops, spliceOp(arg))
		}
	}
	if len(ops) == 0 {
		return nil, fmt.Errorf("%w: signature transform calls not found in player script", types.ErrDecipher)
	}
	return ops, nil
}

func (f *fallback) dispatchBody() (string, error) {
	m, err := dispatchBodyRegexp.FindStringMatch(string(f.code))
	if err != nil || m == nil {
		return "", fmt.Errorf("%w: signature dispatch function not found", types.ErrDecipher)
	}
	if g := m.GroupByName("body"); g != nil {
		return g.String(), nil
	}
	return "", fmt.Errorf("%w: signature dispatch function not found", types.ErrDecipher)
}

var nFunctionNameRegexps = []*regexp.Regexp{
	regexp.MustCompile(`\.get\("n"\)\)&&\(b=([a-zA-Z0-9$]{0,3})\[(\d+)\](.+)\|\|([a-zA-Z0-9]{0,3})`),
	regexp.MustCompile(`\.get\("n"\)\)\s*&&\s*\(b=([a-zA-Z0-9$]{1,})\[(\d+)\]\([a-zA-Z0-9$]{1,}\).+\|\|([a-zA-Z0-9$]{1,})`),
	regexp.MustCompile(`\.get\("n"\)\)\s*&&\s*\(b=([a-zA-Z0-9$]{1,})\([a-zA-Z0-9$]{1,}\)`),
	regexp.MustCompile(`\.get\("n"\).*?&&.*?([a-zA-Z0-9$]{1,})\([a-zA-Z0-9$]{1,}\)`),
}

func (f *fallback) n(challenge string) (string, error) {
	fn, err := f.nFunction()
	if err != nil {
		return "", err
	}
	vm := otto.New()
	if _, err := vm.Run("var unthrottle=" + fn + ";"); err != nil {
		return "", fmt.Errorf("%w: n function did not parse: %v", types.ErrDecipher, err)
	}
	value, err := vm.Call("unthrottle", nil, challenge)
	if err != nil {
		return "", fmt.Errorf("%w: n function failed: %v", types.ErrDecipher, err)
	}
	out, err := value.ToString()
	if err != nil || out == "" || out == "undefined" {
		return "", fmt.Errorf("%w: n function produced no value", types.ErrDecipher)
	}
	return out, nil
}

func (f *fallback) nFunction() (string, error) {
	for _, re := range nFunctionNameRegexps {
		m := re.FindSubmatch(f.code)
		if len(m) == 0 {
			continue
		}
		switch len(m) {
		case 5:
			if idx, err := strconv.Atoi(string(m[2])); err == nil && idx == 0 {
				return f.extractFunction(string(m[4]))
			}
			return f.extractFunction(string(m[1]))
		case 4:
			if idx, err := strconv.Atoi(string(m[2])); err == nil && idx == 0 {
				return f.extractFunction(string(m[3]))
			}
			return f.extractFunction(string(m[1]))
		default:
			return f.extractFunction(string(m[1]))
		}
	}
	return "", fmt.Errorf("%w: n function name not found in player script", types.ErrDecipher)
}

// extractFunction cuts the named function's full definition out of the
// script, tracking brace depth and string literals.
func (f *fallback) extractFunction(name string) (string, error) {
	name = strings.TrimSpace(name)
	defPatterns := [][]byte{
		[]byte(name + "=function("),
		[]byte(name + " = function("),
		[]byte("function " + name + "("),
	}
	start := -1
	for _, def := range defPatterns {
		start = bytes.Index(f.code, def)
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return "", fmt.Errorf("%w: n function body not found", types.ErrDecipher)
	}

	pos := start + bytes.IndexByte(f.code[start:], '{') + 1
	var strChar byte
	for brackets := 1; brackets > 0; pos++ {
		if pos >= len(f.code) {
			return "", fmt.Errorf("%w: unterminated n function body", types.ErrDecipher)
		}
		b := f.code[pos]
		switch b {
		case '{':
			if strChar == 0 {
				brackets++
			}
		case '}':
			if strChar == 0 {
				brackets--
			}
		case '`', '"', '\'':
			if pos > 1 && f.code[pos-1] == '\\' && f.code[pos-2] != '\\' {
				continue
			}
			if strChar == 0 {
				strChar = b
			} else if strChar == b {
				strChar = 0
			}
		}
	}
	body := string(f.code[start:pos])
	if strings.HasPrefix(body, "function ") {
		return body, nil
	}
	// "xx=function(...)" keeps the assignment; strip to the function expression.
	if idx := strings.Index(body, "function("); idx >= 0 {
		return body[idx:], nil
	}
	return body, nil
}
