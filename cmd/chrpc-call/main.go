// Command chrpc-call is an interactive client for a chrpc server: given
// an endpoint name and arguments it issues one call and prints the
// result, or with no arguments drops into a liner-backed REPL.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/chathamware/chrpc/internal/chchannel"
	"github.com/chathamware/chrpc/internal/mlog"
	"github.com/chathamware/chrpc/internal/rpcclient"
	"github.com/chathamware/chrpc/internal/wire"
)

var (
	serverAddr string
	timeout    time.Duration
	cadence    time.Duration
)

func main() {
	root := &cobra.Command{
		Use:   "chrpc-call [endpoint arg...]",
		Short: "Call a chrpc endpoint, or open an interactive session",
		Args:  cobra.ArbitraryArgs,
		RunE:  run,
	}

	root.Flags().StringVar(&serverAddr, "addr", "127.0.0.1:4242", "chrpc server address")
	root.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "call timeout")
	root.Flags().DurationVar(&cadence, "cadence", 50*time.Millisecond, "poll cadence while awaiting a response")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	sock, err := chchannel.DialSocket("tcp", serverAddr, chchannel.SocketConfig{
		QueueDepth: 16,
		MaxMsgSize: 1 << 20,
	})
	if err != nil {
		return fmt.Errorf("dialing %s: %w", serverAddr, err)
	}
	defer sock.Close()

	client, err := rpcclient.New(sock, rpcclient.Attrs{Cadence: cadence, Timeout: timeout})
	if err != nil {
		return fmt.Errorf("building client: %w", err)
	}

	if len(args) > 0 {
		return callOnce(client, args[0], args[1:])
	}

	attach(client)
	return nil
}

// callOnce issues a single call against name. Each further arg is a
// string argument unless it carries a leading type tag (i64:123,
// u64:7, f64:1.5, str:text) - this REPL has no type grammar of its own.
func callOnce(client *rpcclient.Client, name string, rawArgs []string) error {
	args, err := parseArgs(rawArgs)
	if err != nil {
		return err
	}

	ret, err := client.Call(name, args)
	if err != nil {
		return err
	}
	printResult(ret)
	return nil
}

func parseArgs(rawArgs []string) ([]wire.Value, error) {
	args := make([]wire.Value, len(rawArgs))
	for i, raw := range rawArgs {
		v, err := parseArg(raw)
		if err != nil {
			return nil, fmt.Errorf("argument %d (%q): %w", i, raw, err)
		}
		args[i] = v
	}
	return args, nil
}

func parseArg(raw string) (wire.Value, error) {
	tag, rest, ok := strings.Cut(raw, ":")
	if !ok {
		return wire.NewString(raw), nil
	}
	switch tag {
	case "i64":
		n, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return wire.Value{}, err
		}
		return wire.NewI64(n), nil
	case "u64":
		n, err := strconv.ParseUint(rest, 10, 64)
		if err != nil {
			return wire.Value{}, err
		}
		return wire.NewU64(n), nil
	case "f64":
		f, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return wire.Value{}, err
		}
		return wire.NewF64(f), nil
	case "str":
		return wire.NewString(rest), nil
	default:
		return wire.NewString(raw), nil
	}
}

func printResult(ret *wire.Value) {
	if ret == nil {
		fmt.Println("(no return value)")
		return
	}
	switch ret.Type().Tag() {
	case wire.TagString:
		fmt.Println(ret.Str())
	case wire.TagI64:
		fmt.Println(ret.I64())
	case wire.TagU64:
		fmt.Println(ret.U64())
	case wire.TagF64:
		fmt.Println(ret.F64())
	default:
		fmt.Printf("%v : %s\n", ret, ret.Type())
	}
}

// attach drops into an interactive REPL, reading "endpoint arg..."
// lines until EOF or "quit".
func attach(client *rpcclient.Client) {
	fmt.Println("connected. type an endpoint name and arguments, or 'quit'.")

	input := liner.NewLiner()
	defer input.Close()
	input.SetCtrlCAborts(true)

	prompt := fmt.Sprintf("chrpc:%s$ ", serverAddr)

	for {
		line, err := input.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			mlog.Error("chrpc-call: reading input: %v", err)
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		input.AppendHistory(line)

		if line == "quit" || line == "disconnect" {
			break
		}

		fields := strings.Fields(line)
		if err := callOnce(client, fields[0], fields[1:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}
