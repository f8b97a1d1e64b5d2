// Package prompt provides interactive CLI prompts for user input.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

// Sentinel errors for server selection.
var (
	ErrNoServers          = errors.New("no servers to select from")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// Selector handles interactive prompts on a line-oriented reader.
type Selector struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewSelector creates a new Selector using stdin and stdout.
func NewSelector() *Selector {
	return NewSelectorWithIO(os.Stdin, os.Stdout)
}

// NewSelectorWithIO creates a Selector with custom reader and writer for testing.
func NewSelectorWithIO(r io.Reader, w io.Writer) *Selector {
	return &Selector{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

// Confirm asks a yes/no question. Only "y" or "yes" (any case) confirm;
// EOF and read errors count as no.
func (s *Selector) Confirm(question string) bool {
	fmt.Fprintf(s.writer, "%s [y/N]: ", question)

	response, err := s.reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// SelectServer prompts the user to choose between records sharing a name.
//
// Returns:
//   - ErrNoServers if the list is empty
//   - The record if only one exists (auto-selects without prompting)
//   - The selected record based on user input
//   - ErrInvalidSelection if the selection is out of range
//   - ErrSelectionCancelled if input is EOF (e.g., Ctrl+D)
func (s *Selector) SelectServer(query string, servers []mcp.Server) (*mcp.Server, error) {
	if len(servers) == 0 {
		return nil, ErrNoServers
	}

	if len(servers) == 1 {
		return &servers[0], nil
	}

	fmt.Fprintf(s.writer, "Multiple servers found for %q:\n", query)
	for i, srv := range servers {
		fmt.Fprintf(s.writer, "  [%d] %s (%s)\n", i+1, srv.Name, srv.Client.Label())
	}
	fmt.Fprintf(s.writer, "Select [1]: ")

	input, err := s.reader.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return nil, errors.Wrap(err, "reading selection")
		}
		if input == "" {
			return nil, ErrSelectionCancelled
		}
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return &servers[0], nil
	}

	selection, err := strconv.Atoi(input)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidSelection, "%q is not a number", input)
	}

	if selection < 1 || selection > len(servers) {
		return nil, errors.Wrapf(ErrInvalidSelection, "%d is out of range [1-%d]", selection, len(servers))
	}

	return &servers[selection-1], nil
}
