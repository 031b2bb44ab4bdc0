package nativeabi

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rengatools/geometry/internal/dispatcher"
	"github.com/rengatools/geometry/internal/util"
)

// RunCommand executes a text command of the form "COMMAND|arg1|arg2" and
// returns the host-facing response.
func RunCommand(input string) string {
	command, args := parseCommand(input)
	d := Config.dispatcher
	if d == nil || !d.HasHandler(command) {
		return formatDispatchResponse(nil, dispatcher.ErrUnknownCommand)
	}
	result, err := d.Dispatch(dispatcher.Event{
		Command:   command,
		Args:      args,
		Timestamp: time.Now(),
	})
	return formatDispatchResponse(result, err)
}

func parseCommand(input string) (string, []string) {
	parts := strings.Split(input, "|")
	return strings.TrimSpace(parts[0]), util.CleanArgs(parts[1:])
}

// formatDispatchResponse renders a dispatcher outcome as a JSON array:
// ["ok", <result>], ["ok"] or ["error", "<message>"].
func formatDispatchResponse(result any, err error) string {
	if err != nil {
		return errorResponse(err.Error())
	}
	if result == nil {
		return `["ok"]`
	}
	b, err := json.Marshal(result)
	if err != nil {
		return errorResponse(fmt.Sprintf("encoding result: %v", err))
	}
	return fmt.Sprintf(`["ok", %s]`, b)
}

func errorResponse(msg string) string {
	b, _ := json.Marshal(msg)
	return fmt.Sprintf(`["error", %s]`, b)
}

// truncateReply returns response as a NUL-terminated byte string that fits
// in size bytes. A size of 0 yields nil.
func truncateReply(response string, size int) []byte {
	if size <= 0 {
		return nil
	}
	n := min(len(response), size-1)
	out := make([]byte, n+1)
	copy(out, response[:n])
	return out
}
