// Package command implements the Command Registry & Executor: an explicit
// lowercase-name -> Handler table (spec.md §9's redesign of the reference
// implementation's switch-on-command-name dispatch), arity and operand-type
// validation ahead of any mutation, and RESP reply production.
package command

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/rsciampacone/kvhacking/internal/resp"
	"github.com/rsciampacone/kvhacking/internal/store"
)

// Handler executes one command's arguments (excluding the command name)
// against the store and produces the reply to send back. Handlers validate
// their own arity and operand types before mutating the store, per spec.md
// §4.3 steps 3-5.
type Handler func(st *store.Store, args [][]byte) resp.Reply

// Registry maps a lowercase command name to its Handler.
type Registry struct {
	handlers map[string]Handler
}

// New builds the registry for the eight commands spec.md §6 requires.
// Every other name (the reference implementation's PING/KEYS/INCR/SADD/...
// surface) is deliberately absent — see DESIGN.md.
func New() *Registry {
	return &Registry{
		handlers: map[string]Handler{
			"set":    handleSet,
			"get":    handleGet,
			"lpush":  handleLPush,
			"lpop":   handleLPop,
			"llen":   handleLLen,
			"lindex": handleLIndex,
			"hset":   handleHSet,
			"hget":   handleHGet,
		},
	}
}

// nullSentinel is the one-element statement the Frame Reader synthesizes for
// an empty RESP array (*0) — see resp.Reader.ReadStatement. The Executor
// recognizes it ahead of ordinary dispatch and answers with the
// empty-command-name reply spec.md §4.3 specifies, rather than looking up a
// command literally named "null".
var nullSentinel = "null"

// Execute normalizes the command name, dispatches to its handler (or
// produces the unknown-command reply), and returns the reply to write back
// to the connection. The caller never needs to inspect the statement
// itself.
func (reg *Registry) Execute(st *store.Store, statement [][]byte) resp.Reply {
	if len(statement) == 1 && string(statement[0]) == nullSentinel {
		return resp.Err("unknown command ''")
	}

	rawName := statement[0]
	args := statement[1:]
	name := string(bytes.ToLower(rawName))

	handler, ok := reg.handlers[name]
	if !ok {
		return resp.Err(fmt.Sprintf("unknown command '%s'", rawName))
	}
	return handler(st, args)
}

func wrongTypeReply() resp.Reply {
	return resp.Err("Operation against a key holding the wrong kind of value")
}

func arityReply(name string) resp.Reply {
	return resp.Err(fmt.Sprintf("wrong number of arguments for '%s' command", name))
}

func handleSet(st *store.Store, args [][]byte) resp.Reply {
	if len(args) != 2 {
		return arityReply("set")
	}
	st.Set(string(args[0]), args[1])
	return resp.OK()
}

func handleGet(st *store.Store, args [][]byte) resp.Reply {
	if len(args) != 1 {
		return arityReply("get")
	}
	val, ok, err := st.Get(string(args[0]))
	if err != nil {
		return wrongTypeReply()
	}
	if !ok {
		return resp.NilBulk()
	}
	return resp.Bulk(val)
}

func handleLPush(st *store.Store, args [][]byte) resp.Reply {
	if len(args) < 2 {
		return arityReply("lpush")
	}
	n, err := st.ListHeadPush(string(args[0]), args[1:])
	if err != nil {
		return wrongTypeReply()
	}
	return resp.Integer(int64(n))
}

func handleLPop(st *store.Store, args [][]byte) resp.Reply {
	if len(args) != 1 {
		return arityReply("lpop")
	}
	val, ok, err := st.ListHeadPop(string(args[0]))
	if err != nil {
		return wrongTypeReply()
	}
	if !ok {
		return resp.NilBulk()
	}
	return resp.Bulk(val)
}

func handleLLen(st *store.Store, args [][]byte) resp.Reply {
	if len(args) != 1 {
		return arityReply("llen")
	}
	n, err := st.ListLen(string(args[0]))
	if err != nil {
		return wrongTypeReply()
	}
	return resp.Integer(int64(n))
}

func handleLIndex(st *store.Store, args [][]byte) resp.Reply {
	if len(args) != 2 {
		return arityReply("lindex")
	}
	i, err := strconv.Atoi(string(args[1]))
	if err != nil {
		return resp.Err("value is not an integer or out of range")
	}

	val, ok, err := st.ListIndex(string(args[0]), i)
	switch {
	case errors.Is(err, store.ErrIndexOutOfRange):
		return resp.Err("index out of range")
	case errors.Is(err, store.ErrWrongType):
		return wrongTypeReply()
	case err != nil:
		return wrongTypeReply()
	case !ok:
		return resp.NilBulk()
	default:
		return resp.Bulk(val)
	}
}

func handleHSet(st *store.Store, args [][]byte) resp.Reply {
	if len(args) != 3 {
		return arityReply("hset")
	}
	isNew, err := st.HashSet(string(args[0]), string(args[1]), args[2])
	if err != nil {
		return wrongTypeReply()
	}
	if isNew {
		return resp.Integer(1)
	}
	return resp.Integer(0)
}

func handleHGet(st *store.Store, args [][]byte) resp.Reply {
	if len(args) != 2 {
		return arityReply("hget")
	}
	val, ok, err := st.HashGet(string(args[0]), string(args[1]))
	if err != nil {
		return wrongTypeReply()
	}
	if !ok {
		return resp.NilBulk()
	}
	return resp.Bulk(val)
}
