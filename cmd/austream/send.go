// ABOUTME: The austream send command
// ABOUTME: Starts a sender session and streams a capture source to receivers
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/RishiIRL/austream-go/internal/app"
	"github.com/RishiIRL/austream-go/internal/capture"
	"github.com/RishiIRL/austream-go/internal/protocol"
	"github.com/RishiIRL/austream-go/internal/sender"
	"github.com/spf13/cobra"
)

var sendFlags struct {
	port             int
	pin              string
	bufferMs         int
	silenceThreshold int
	source           string
	name             string
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Capture and distribute audio to receivers on this network",
	RunE:  runSend,
}

func init() {
	f := sendCmd.Flags()
	f.IntVar(&sendFlags.port, "port", protocol.DefaultAudioPort, "audio/control port (time sync uses port+1)")
	f.StringVar(&sendFlags.pin, "pin", "", "6-digit session PIN (generated when empty)")
	f.IntVar(&sendFlags.bufferMs, "buffer-ms", sender.DefaultBufferMs, "pre-roll suggested to receivers")
	f.IntVar(&sendFlags.silenceThreshold, "silence-threshold", 0, "silence gate amplitude (default 200)")
	f.StringVar(&sendFlags.source, "source", "", "audio file to stream (.mp3/.flac); empty plays a test tone")
	f.StringVar(&sendFlags.name, "name", "", "announced host name")
}

func runSend(cmd *cobra.Command, args []string) error {
	app.Init()
	log := app.GetLogger("main")

	// Config file values apply where no flag was given.
	var fileCfg struct {
		Stream struct {
			Port             int `yaml:"port"`
			BufferMs         int `yaml:"buffer_ms"`
			SilenceThreshold int `yaml:"silence_threshold"`
		} `yaml:"stream"`
	}
	app.LoadConfig(&fileCfg)

	if !cmd.Flags().Changed("port") && fileCfg.Stream.Port != 0 {
		sendFlags.port = fileCfg.Stream.Port
	}
	if !cmd.Flags().Changed("buffer-ms") && fileCfg.Stream.BufferMs != 0 {
		sendFlags.bufferMs = fileCfg.Stream.BufferMs
	}
	if !cmd.Flags().Changed("silence-threshold") && fileCfg.Stream.SilenceThreshold != 0 {
		sendFlags.silenceThreshold = fileCfg.Stream.SilenceThreshold
	}

	src, err := capture.NewSource(sendFlags.source)
	if err != nil {
		return err
	}

	chunker, err := capture.NewChunker(src)
	if err != nil {
		src.Close()
		return err
	}
	defer chunker.Close()

	pacer := capture.NewPacer(chunker)
	defer pacer.Close()

	session, err := sender.NewSession(sender.Config{
		Port:             sendFlags.port,
		PIN:              sendFlags.pin,
		BufferMs:         sendFlags.bufferMs,
		SilenceThreshold: sendFlags.silenceThreshold,
		HostName:         sendFlags.name,
	})
	if err != nil {
		return err
	}

	if err := session.Start(); err != nil {
		return err
	}
	defer session.Stop()

	fmt.Printf("PIN: %s\n", session.PIN())
	fmt.Printf("Pairing: %s\n", session.Pairing(localIP()))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("shutting down")
		session.Stop()
	}()

	if err := session.Stream(pacer); err != nil {
		return fmt.Errorf("stream: %w", err)
	}
	return nil
}

// localIP finds the interface address used to reach the LAN. Falls back to
// loopback when the host has no route.
func localIP() string {
	conn, err := net.Dial("udp4", "192.168.1.1:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}
