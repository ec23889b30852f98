//go:build unix

package main

import (
	"errors"
	"flag"
	"fmt"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"net"
	"os"
	"portio"
	"time"
)

var config *portio.Config

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-c config] ls <dir> | wait <host:port> [timeout]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	configFilePath := flag.String("c", "", "path to configuration file (.toml or .yaml).")
	flag.Usage = usage
	flag.Parse()

	var err error
	if *configFilePath != "" {
		config, err = portio.LoadConfig(*configFilePath)
		if err != nil {
			log.Fatal().Msgf("can't load config: %+v", err)
		}
	} else {
		config = portio.DefaultConfig()
	}
	if err = config.Apply(); err != nil {
		log.Fatal().Msgf("can't apply config: %+v", err)
	}

	args := flag.Args()
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}
	scope := config.NewScope("main")
	defer scope.Close()

	switch args[0] {
	case "ls":
		err = list(scope, args[1])
	case "wait":
		timeout := 5 * time.Second
		if len(args) > 2 {
			timeout, err = time.ParseDuration(args[2])
			if err != nil {
				log.Fatal().Msgf("bad timeout: %+v", err)
			}
		}
		err = wait(scope, args[1], timeout)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Error().Msgf("%s failed: %+v", args[0], err)
		scope.Close()
		os.Exit(1)
	}
}

func list(scope *portio.Scope, path string) error {
	dir, err := portio.OpenDir(scope, path)
	if err != nil {
		return err
	}
	defer dir.Close()
	for {
		info, err := dir.Read(portio.FieldType | portio.FieldSize | portio.FieldPerm | portio.FieldMtime)
		if errors.Is(err, portio.ErrNotFound) {
			return nil
		}
		if err != nil && !errors.Is(err, portio.ErrIncomplete) {
			return err
		}
		if err != nil {
			log.Warn().Msgf("%+v", err)
		}
		fmt.Printf("%-5s %04o %10d %s %s\n", info.Type, info.Perm.Mode(), info.Size,
			info.Mtime.Format(time.RFC3339), info.Name)
	}
}

func wait(scope *portio.Scope, address string, timeout time.Duration) error {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return err
	}
	defer conn.Close()
	sock, err := portio.NewSocket(conn.(*net.TCPConn))
	if err != nil {
		return err
	}
	set, err := portio.NewPollSet(scope, 2)
	if err != nil {
		return err
	}
	if err := set.Add(sock, portio.PollIn|portio.PollPri); err != nil {
		return err
	}
	ready, err := set.Wait(timeout)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d ready\n", address, ready)
	return nil
}
