package comm

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var settings = &struct {
	noProgress bool
	quiet      bool
	verbose    bool
	json       bool
	panic      bool
}{}

// Configure sets all logging options in one go
func Configure(noProgress, quiet, verbose, json, panic, noColor bool) {
	settings.noProgress = noProgress
	settings.quiet = quiet
	settings.verbose = verbose
	settings.json = json
	settings.panic = panic

	color.NoColor = color.NoColor || noColor || json
}

// JsonEnabled returns true if output is machine-readable JSON lines
func JsonEnabled() bool {
	return settings.json
}

// JsonMessage is a single line of JSON output
type JsonMessage map[string]interface{}

// Theme holds the signs prefixed to operation and stat lines
type Theme struct {
	OpSign   string
	StatSign string
}

var themes = map[string]*Theme{
	"unicode": {"•", "✓"},
	"ascii":   {">", "<"},
	"cp437":   {"∙", "√"},
}

func getCharset() string {
	if runtime.GOOS == "windows" && os.Getenv("OS") != "CYGWIN" {
		return "cp437"
	}

	var utf8 = ".UTF-8"
	if strings.Contains(os.Getenv("LC_ALL"), utf8) ||
		os.Getenv("LC_CTYPE") == "UTF-8" ||
		strings.Contains(os.Getenv("LANG"), utf8) {
		return "unicode"
	}

	return "ascii"
}

var theme = themes[getCharset()]

// Opf prints a formatted string informing the user on what operation we're doing
func Opf(format string, args ...interface{}) {
	Logf("%s %s", theme.OpSign, fmt.Sprintf(format, args...))
}

// Statf prints a formatted string informing the user how fast the operation went
func Statf(format string, args ...interface{}) {
	Logf("%s %s", theme.StatSign, fmt.Sprintf(format, args...))
}

// Log sends an informational message to the client
func Log(msg string) {
	Logl("info", msg)
}

// Logf sends a formatted informational message to the client
func Logf(format string, args ...interface{}) {
	Loglf("info", format, args...)
}

// Warn lets the user know about a problem that's non-critical
func Warn(msg string) {
	Logl("warning", msg)
}

// Warnf is a formatted variant of Warn
func Warnf(format string, args ...interface{}) {
	Loglf("warning", format, args...)
}

// Debug messages are like Info messages, but printed only when verbose
func Debug(msg string) {
	Logl("debug", msg)
}

// Debugf is a formatted variant of Debug
func Debugf(format string, args ...interface{}) {
	Loglf("debug", format, args...)
}

// Logl logs a message of a given level
func Logl(level string, msg string) {
	send("log", JsonMessage{
		"message": msg,
		"level":   level,
	})
}

// Loglf logs a formatted message of a given level
func Loglf(level string, format string, args ...interface{}) {
	Logl(level, fmt.Sprintf(format, args...))
}

// Notice prints a box with important info in it.
// UX style guide: don't abuse it or people will stop reading it.
func Notice(header string, lines []string) {
	if settings.json {
		Logf("notice: %s", header)
		for _, line := range lines {
			Logf("notice: %s", line)
		}
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoFormatHeaders(false)
	table.SetColWidth(60)
	table.SetHeader([]string{header})
	for _, line := range lines {
		table.Append([]string{line})
	}
	table.Render()
}

// Table prints rows under a header, in plain mode only.
func Table(header []string, rows [][]string) {
	if settings.json || settings.quiet {
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetHeader(header)
	table.AppendBulk(rows)
	table.Render()
}

// Die exits with a non-zero exit code after giving a reason to the client
func Die(msg string) {
	send("error", JsonMessage{
		"message": msg,
	})
}

// Dief is a formatted variant of Die
func Dief(format string, args ...interface{}) {
	Die(fmt.Sprintf(format, args...))
}

// Result sends a result
func Result(value interface{}) {
	send("result", JsonMessage{
		"value": value,
	})
}

type printerFunc func()

// ResultOrPrint sends value as a result in JSON mode, and calls p otherwise
func ResultOrPrint(value interface{}, p printerFunc) {
	if settings.json {
		Result(value)
	} else {
		p()
	}
}

var (
	warnColor  = color.New(color.FgYellow).SprintFunc()
	errorColor = color.New(color.FgRed, color.Bold).SprintFunc()
)

// sends a message to the client
func send(msgType string, obj JsonMessage) {
	if settings.json {
		obj["type"] = msgType
		obj["time"] = time.Now().UTC().Unix()
		if msgType == "log" && obj["level"] == "debug" {
			if settings.quiet || !settings.verbose {
				return
			}
		}

		sendJSON(obj)
		if msgType == "error" {
			exit()
		}
		return
	}

	switch msgType {
	case "log":
		switch obj["level"] {
		case "info":
			if !settings.quiet {
				log.Println(obj["message"])
			}
		case "debug":
			if !settings.quiet && settings.verbose {
				log.Println(obj["message"])
			}
		case "warning":
			log.Printf("%s %s\n", warnColor("warning:"), obj["message"])
		default:
			log.Printf("%s: %s\n", obj["level"], obj["message"])
		}
	case "error":
		EndProgress()
		if settings.panic {
			log.Panicln(obj["message"])
		}
		log.Printf("%s %s\n", errorColor("error:"), obj["message"])
		exit()
	case "result", "progress":
		// json mode only
	default:
		log.Println(msgType, obj)
	}
}

// overridden in tests
var exit = func() {
	os.Exit(1)
}

// sends a JSON-encoded message to the client
func sendJSON(obj JsonMessage) {
	json, _ := json.Marshal(obj)
	fmt.Println(string(json))
}
