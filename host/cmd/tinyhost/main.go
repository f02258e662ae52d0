package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"
	"github.com/google/shlex"

	"tinytemplate/core"
	"tinytemplate/host/link"
	"tinytemplate/host/serial"
	"tinytemplate/protocol"
	"tinytemplate/sim"
)

var (
	device  = flag.String("device", "/dev/ttyUSB0", "Serial device path")
	baud    = flag.Int("baud", protocol.DefaultBaud, "Baud rate of the firmware build")
	timeout = flag.Duration("timeout", 500*time.Millisecond, "Echo timeout per chunk")
	chunk   = flag.Int("chunk", link.DefaultChunk, "Bytes sent before waiting for the echo")
	clockHz = flag.Uint("clock", 8000000, "Device CPU clock for the sim and timing commands")
)

// session holds the lazily opened device connection
type session struct {
	port    serial.Port
	checker *link.Checker
}

func (s *session) connect() (*link.Checker, error) {
	if s.checker != nil {
		return s.checker, nil
	}
	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	s.port = port
	s.checker = link.NewChecker(port, *timeout)
	s.checker.SetChunk(*chunk)
	if err := s.checker.Drain(); err != nil {
		glog.Warningf("drain: %v", err)
	}
	return s.checker, nil
}

func (s *session) close() {
	if s.port != nil {
		s.port.Close()
	}
}

func main() {
	flag.Parse()
	defer glog.Flush()

	fmt.Printf("tinyhost %s - soft serial link tester\n", protocol.Version)
	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")

	s := &session{}
	defer s.close()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		args, err := shlex.Split(scanner.Text())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return

		case "help", "?":
			printHelp()

		case "send":
			err = cmdSend(s, args[1:])

		case "echo":
			err = cmdEcho(s, args[1:])

		case "sweep":
			err = cmdSweep(s, args[1:])

		case "sim":
			err = cmdSim(args[1:])

		case "timing":
			err = cmdTiming(args[1:])

		default:
			fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", args[0])
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  send TEXT...             - Send text and print the reply")
	fmt.Println("  echo [PATTERN] [N]       - Echo N bytes of a pattern through the device")
	fmt.Println("  sweep [N]                - Echo every pattern")
	fmt.Println("  sim [BAUD...]            - Loop all 256 byte values through the simulator")
	fmt.Println("  timing BAUD...           - Show delay loop counts for -clock")
	fmt.Println("  quit/exit/q              - Exit the program")
	fmt.Printf("\nPatterns: %v\n\n", link.Patterns)
}

// intArg parses args[i] or returns def when absent
func intArg(args []string, i int, def int) (int, error) {
	if len(args) <= i {
		return def, nil
	}
	v, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("bad number %q: %w", args[i], err)
	}
	return v, nil
}

// baudArgs parses a list of baud rates, defaulting to -baud
func baudArgs(args []string) ([]uint32, error) {
	if len(args) == 0 {
		return []uint32{uint32(*baud)}, nil
	}
	out := make([]uint32, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseUint(a, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad baud rate %q: %w", a, err)
		}
		out = append(out, uint32(v))
	}
	return out, nil
}

func cmdSend(s *session, args []string) error {
	c, err := s.connect()
	if err != nil {
		return err
	}
	for i, a := range args {
		if i > 0 {
			a = " " + a
		}
		if _, err := c.Echo([]byte(a)); err != nil && err != link.ErrTimeout {
			return err
		}
	}
	reply, err := c.Collect()
	if err != nil {
		return err
	}
	fmt.Printf("%q\n", reply)
	return nil
}

func runEcho(c *link.Checker, pattern string, n int) error {
	data, err := link.Pattern(pattern, n)
	if err != nil {
		return err
	}
	res, err := c.Echo(data)
	status := "ok"
	if !res.OK() {
		status = "FAIL"
	}
	fmt.Printf("%-7s %4d bytes  %d errors  crc %04X/%04X  %.0f B/s  %s\n",
		pattern, len(data), res.Errors(), res.SentCRC, res.ReceivedCRC, res.BytesPerSecond(), status)
	if err == link.ErrTimeout {
		return nil
	}
	return err
}

func cmdEcho(s *session, args []string) error {
	pattern := "ramp"
	if len(args) > 0 {
		pattern = args[0]
	}
	n, err := intArg(args, 1, 256)
	if err != nil {
		return err
	}
	c, err := s.connect()
	if err != nil {
		return err
	}
	return runEcho(c, pattern, n)
}

func cmdSweep(s *session, args []string) error {
	n, err := intArg(args, 0, 256)
	if err != nil {
		return err
	}
	c, err := s.connect()
	if err != nil {
		return err
	}
	for _, p := range link.Patterns {
		if err := runEcho(c, p, n); err != nil {
			return err
		}
	}
	return nil
}

func cmdSim(args []string) error {
	bauds, err := baudArgs(args)
	if err != nil {
		return err
	}
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	for _, b := range bauds {
		cfg := core.SerialConfig{ClockHz: uint32(*clockHz), BaudRate: b}
		res, err := sim.Loopback(cfg, data)
		if err != nil {
			fmt.Printf("%7d baud: %v\n", b, err)
			continue
		}
		fmt.Printf("%7d baud: tx=%d rx=%d start=%d  bit error %.2f%%  %d/256 corrupted\n",
			b, res.Timing.TxDelay, res.Timing.RxDelay, res.Timing.RxStartDelay,
			res.MaxTxError*100, len(res.Mismatches()))
	}
	return nil
}

func cmdTiming(args []string) error {
	bauds, err := baudArgs(args)
	if err != nil {
		return err
	}
	m := core.AVRCycleModel
	for _, b := range bauds {
		t, err := core.DeriveTiming(uint32(*clockHz), b, m)
		if err != nil {
			fmt.Printf("%7d baud: %v\n", b, err)
			continue
		}
		nominal := float64(*clockHz) / float64(b)
		fmt.Printf("%7d baud: tx=%d (%d cycles) rx=%d (%d cycles) start=%d  nominal %.1f cycles\n",
			b, t.TxDelay, t.TxBitCycles(m), t.RxDelay, t.RxBitCycles(m), t.RxStartDelay, nominal)
	}
	return nil
}
