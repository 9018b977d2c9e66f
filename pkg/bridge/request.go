package bridge

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// The payload a client sends to announce that it is idle and listening. It is
// not a result.
const readyToken = "ready"

// readPayload reads one client exchange. A request starting with "POST"
// carries the payload as an HTTP-style body; any other first line is itself
// the payload.
func readPayload(br *bufio.Reader) (string, error) {
	line, err := readLine(br)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(line, "POST") {
		return line, nil
	}
	headers, err := readHeaders(br)
	if err != nil {
		return "", err
	}
	return readBody(br, headers)
}

// readLine reads one line, stripping the trailing LF or CRLF.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readHeaders reads colon-separated header lines up to and including the
// terminating blank line. Keys are lowercased and values trimmed of
// surrounding whitespace.
func readHeaders(br *bufio.Reader) (map[string]string, error) {
	headers := make(map[string]string)
	for {
		line, err := readLine(br)
		if err != nil {
			return nil, err
		}
		if line == "" {
			return headers, nil
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed header line %q", line)
		}
		headers[strings.ToLower(name)] = strings.TrimSpace(value)
	}
}

// readBody reads exactly content-length bytes as dictated by the headers.
func readBody(br *bufio.Reader, headers map[string]string) (string, error) {
	cl, ok := headers["content-length"]
	if !ok {
		return "", errors.New("missing content-length header")
	}
	n, err := strconv.Atoi(cl)
	if err != nil || n < 0 {
		return "", fmt.Errorf("invalid content-length %q", cl)
	}
	body := make([]byte, n)
	_, err = io.ReadFull(br, body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}
