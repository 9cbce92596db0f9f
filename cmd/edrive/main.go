package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"edrive/config"
	"edrive/drive"
	"edrive/protocol"
	"edrive/serialport"
)

var (
	deviceFlag = flag.String("device", "", "Serial device path (e.g. /dev/ttyACM0, COM9)")
	baudFlag   = flag.Int("baud", 0, "Serial baud rate (default 9600)")
	configFlag = flag.String("config", "", "Path to YAML config file")
	verbose    = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}
	if *deviceFlag != "" {
		cfg.Device = *deviceFlag
	}
	if *baudFlag != 0 {
		cfg.Baud = *baudFlag
	}

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}
	cmd := strings.ToLower(args[0])

	// ports needs no connection.
	if cmd == "ports" {
		ports, err := serialport.List()
		if err != nil {
			log.Fatal().Err(err).Msg("could not enumerate serial ports")
		}
		if len(ports) == 0 {
			fmt.Println("no serial ports found")
			return
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	if cfg.Device == "" {
		log.Fatal().Msg("no serial device given: use -device, or set device in the config file")
	}

	client := drive.New(
		drive.WithBaud(cfg.Baud),
		drive.WithReadWindow(cfg.ReadWindow()),
		drive.WithSettleDelay(cfg.SettleDelay()),
		drive.WithSlotCount(cfg.SlotCount),
		drive.WithLogger(log),
	)
	if err := client.Connect(cfg.Device); err != nil {
		log.Fatal().Err(err).Msg("connect failed")
	}
	defer client.Close()

	if err := run(client, cmd, args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(client *drive.Client, cmd string, args []string) error {
	switch cmd {
	case "ls":
		printListing(client.ListFiles())

	case "cat":
		slot, err := parseSlot(args)
		if err != nil {
			return err
		}
		fmt.Print(client.ReadFile(slot))

	case "put":
		slot, err := parseSlot(args)
		if err != nil {
			return err
		}
		var text string
		if len(args) >= 2 {
			text = strings.Join(args[1:], " ")
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			text = string(data)
		}
		// A single trailing newline is an editing artifact, not content.
		text = strings.TrimSuffix(text, "\n")
		client.WriteFile(slot, text)
		printListing(client.ListFiles())

	case "name":
		slot, err := parseSlot(args)
		if err != nil {
			return err
		}
		if len(args) < 2 {
			return fmt.Errorf("name <slot> <newname>")
		}
		client.RenameFile(slot, args[1])
		printListing(client.ListFiles())

	case "rm":
		slot, err := parseSlot(args)
		if err != nil {
			return err
		}
		client.DeleteFile(slot)
		printListing(client.ListFiles())

	case "shell":
		return shell(client)

	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}

	return nil
}

// shell runs an interactive command loop against the connected drive.
func shell(client *drive.Client) error {
	fmt.Println("Connected. Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])

		switch cmd {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return nil

		case "help", "?":
			printShellHelp()

		case "ls", "cat", "rm":
			if err := run(client, cmd, parts[1:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			if cmd == "cat" {
				fmt.Println()
			}

		case "put":
			// In the shell, everything after the slot is the content.
			if len(parts) < 3 {
				fmt.Println("put <slot> <text>")
				continue
			}
			if err := run(client, "put", []string{parts[1], strings.Join(parts[2:], " ")}); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		case "name":
			if err := run(client, "name", parts[1:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		default:
			fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", cmd)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func parseSlot(args []string) (int, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("missing slot number")
	}
	slot, err := strconv.Atoi(args[0])
	if err != nil || slot < 1 {
		return 0, fmt.Errorf("invalid slot number %q", args[0])
	}
	return slot, nil
}

func printListing(entries []protocol.FileEntry) {
	if entries == nil {
		fmt.Println("not connected")
		return
	}
	for _, e := range entries {
		fmt.Printf("%d: %-9s %6d B\n", e.Index, e.Name, e.Size)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: edrive [flags] <command> [args]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  ports               List serial ports on this machine")
	fmt.Fprintln(os.Stderr, "  ls                  List the drive's slots")
	fmt.Fprintln(os.Stderr, "  cat <slot>          Print a slot's content")
	fmt.Fprintln(os.Stderr, "  put <slot> [text]   Store text in a slot (reads stdin without text)")
	fmt.Fprintln(os.Stderr, "  name <slot> <name>  Rename a slot (max 9 characters)")
	fmt.Fprintln(os.Stderr, "  rm <slot>           Clear a slot")
	fmt.Fprintln(os.Stderr, "  shell               Interactive command loop")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}

func printShellHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  ls                  - List the drive's slots")
	fmt.Println("  cat <slot>          - Print a slot's content")
	fmt.Println("  put <slot> <text>   - Store text in a slot")
	fmt.Println("  name <slot> <name>  - Rename a slot (max 9 characters)")
	fmt.Println("  rm <slot>           - Clear a slot")
	fmt.Println("  help/?              - Show this help message")
	fmt.Println("  quit/exit/q         - Exit the shell")
	fmt.Println()
}
