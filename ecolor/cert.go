package ecolor

import (
	"fmt"
	"regexp"
	"strings"
)

// the config delivers PEM blocks on one line with spaces where the body newlines were
var certRegex = regexp.MustCompile(`(--.*?BEGIN.*?-) (.*) (--.*?END.*?-$)`)

// FormatCert rebuilds a PEM block from its single-line form
func FormatCert(raw string) (string, error) {
	m := certRegex.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", fmt.Errorf("%w: no BEGIN/END block found", ErrCertificateFormat)
	}
	body := strings.ReplaceAll(m[2], " ", "\n")
	return m[1] + "\n" + body + "\n" + m[3], nil
}
