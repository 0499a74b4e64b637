package infrastructure

import "strings"

const shellSpecialChars = " \t\n\r'\"$`\\!*?[](){}|;<>&~#%"

// quoteArg single-quotes s if a shell would otherwise interpret it. For log output
// only; exec.Command takes arguments verbatim.
func quoteArg(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, shellSpecialChars) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// commandLine renders a command and its arguments as a copy-pasteable shell line
func commandLine(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quoteArg(name))
	for _, arg := range args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}
