// ABOUTME: The austream recv command
// ABOUTME: Authenticates against a sender and plays its stream locally
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RishiIRL/austream-go/internal/app"
	"github.com/RishiIRL/austream-go/internal/player"
	"github.com/RishiIRL/austream-go/internal/protocol"
	"github.com/RishiIRL/austream-go/internal/receiver"
	"github.com/spf13/cobra"
)

var recvFlags struct {
	url    string
	server string
	pin    string
	volume float64
}

var recvCmd = &cobra.Command{
	Use:   "recv",
	Short: "Join a sender and play its audio stream",
	RunE:  runRecv,
}

func init() {
	f := recvCmd.Flags()
	f.StringVar(&recvFlags.url, "url", "", "pairing URL (austream://ip:port?pin=...)")
	f.StringVar(&recvFlags.server, "server", "", "sender address host:port")
	f.StringVar(&recvFlags.pin, "pin", "", "6-digit session PIN")
	f.Float64Var(&recvFlags.volume, "volume", 1.0, "linear playback gain in [0,1]")
}

func runRecv(cmd *cobra.Command, args []string) error {
	app.Init()
	log := app.GetLogger("main")

	var fileCfg struct {
		Receiver struct {
			Server string `yaml:"server"`
			PIN    string `yaml:"pin"`
		} `yaml:"receiver"`
	}
	app.LoadConfig(&fileCfg)

	server, pin := recvFlags.server, recvFlags.pin
	if server == "" {
		server = fileCfg.Receiver.Server
	}
	if pin == "" {
		pin = fileCfg.Receiver.PIN
	}
	if recvFlags.url != "" {
		pairing, err := protocol.ParsePairing(recvFlags.url)
		if err != nil {
			return err
		}
		server = fmt.Sprintf("%s:%d", pairing.Host, pairing.Port)
		if pairing.PIN != "" {
			pin = pairing.PIN
		}
	}
	if server == "" {
		return fmt.Errorf("either --url or --server is required")
	}
	if pin == "" {
		return fmt.Errorf("a session PIN is required (--pin or ?pin= in the URL)")
	}

	if host, err := receiver.Probe(server, 2*time.Second); err == nil {
		log.Info().Str("host", host).Msg("sender found")
	}

	sink, err := player.NewOtoSink()
	if err != nil {
		return fmt.Errorf("open audio output: %w", err)
	}
	defer sink.Close()
	sink.SetGain(recvFlags.volume)

	r := receiver.New(receiver.Config{ServerAddr: server, PIN: pin, Sink: sink})

	if err := r.Connect(); err != nil {
		return err
	}
	if err := r.Start(); err != nil {
		return err
	}
	defer r.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	stats := r.Stats()
	log.Info().
		Uint64("received", stats.Received).
		Uint64("lost", stats.Lost).
		Uint64("decrypt_errors", stats.DecryptErrors).
		Uint64("played", stats.Played).
		Int64("offset_ns", stats.OffsetNs).
		Int64("rtt_ns", stats.RTTNs).
		Msg("session stats")

	return nil
}
