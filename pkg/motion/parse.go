package motion

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse reads a word-address command stream, one command per line:
//
//	line:
//	    wsp* comment? (word (wsp | comment)*)* eol
//	word:
//	    letter number
//	comment:
//	    "(" [^)]* ")"
//	    | ";" rest-of-line
//	letter:
//	    "A"-"Z" | "a"-"z"
//	number:
//	    sign? digit-sequence ("." digit-sequence?)?
//
// The first word of a line names the command (its letter and digits are kept
// verbatim, so "G01" stays "G01"); the remaining words become parameters.
// N words (line numbers) are skipped. Empty lines produce no command.
func Parse(data string) ([]Command, error) {
	var cmds []Command
	for n, line := range strings.Split(data, "\n") {
		s := &state{data: strings.TrimSuffix(line, "\r")}
		cmd, err := s.parseLine()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		if cmd != nil {
			cmds = append(cmds, *cmd)
		}
	}
	return cmds, nil
}

type state struct {
	data  string
	index int
}

func (s *state) parseLine() (*Command, error) {
	var cmd *Command
	for {
		s.whitespace()
		if s.index >= len(s.data) {
			return cmd, nil
		}
		c := s.peek()
		switch {
		case c == ';':
			// comment to end of line
			return cmd, nil
		case c == '(':
			if err := s.skipComment(); err != nil {
				return nil, err
			}
		case isLetter(c):
			letter := strings.ToUpper(string(s.next()))
			if cmd == nil {
				digits := s.digits()
				if digits == "" {
					return nil, fmt.Errorf("command word %q has no number", letter)
				}
				if letter == "N" {
					// line number, the next word names the command
					continue
				}
				cmd = &Command{Name: letter + digits, Params: map[string]float64{}}
				continue
			}
			value, err := s.parseNumber()
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", letter, err)
			}
			cmd.Params[letter] = value
		default:
			return nil, fmt.Errorf("unexpected character %q", string(c))
		}
	}
}

func (s *state) peek() byte {
	return s.data[s.index]
}

func (s *state) next() byte {
	c := s.data[s.index]
	s.index++
	return c
}

func (s *state) whitespace() {
	for s.index < len(s.data) {
		switch s.data[s.index] {
		case ' ', '\t':
			s.index++
		default:
			return
		}
	}
}

func (s *state) skipComment() error {
	start := s.index
	for s.index < len(s.data) {
		if s.next() == ')' {
			return nil
		}
	}
	return fmt.Errorf("unterminated comment: %q", s.data[start:])
}

func (s *state) digits() string {
	start := s.index
	for s.index < len(s.data) && isDigit(s.data[s.index]) {
		s.index++
	}
	return s.data[start:s.index]
}

func (s *state) parseNumber() (float64, error) {
	start := s.index
	if s.index < len(s.data) && (s.data[s.index] == '+' || s.data[s.index] == '-') {
		s.index++
	}
	s.digits()
	if s.index < len(s.data) && s.data[s.index] == '.' {
		s.index++
		s.digits()
	}
	text := s.data[start:s.index]
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", text)
	}
	return value, nil
}

func isLetter(c byte) bool {
	return ('A' <= c && c <= 'Z') || ('a' <= c && c <= 'z')
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
