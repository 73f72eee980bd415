// Command mcserver runs a standalone Minecraft server endpoint: it answers
// status pings with a configured document and walks joining players
// through login and configuration into a minimal play loop. With -etcd and
// -advertise set it also registers itself as a backend for mcproxy to
// discover.
package main

import (
	"flag"
	"strings"

	"go.uber.org/zap"

	"mcproto/packets"
	"mcproto/registry"
	"mcproto/server"
	"mcproto/statuspb"
)

func main() {
	listenAddr := flag.String("listen", "0.0.0.0:25565", "address to accept player connections on")
	advertiseAddr := flag.String("advertise", "", "address to register in etcd for proxy discovery (empty: don't register)")
	etcdEndpoints := flag.String("etcd", "", "comma-separated etcd endpoints (empty: no registration)")
	motd := flag.String("motd", "A mcproto server", "status MOTD shown in the server list")
	maxPlayers := flag.Int("max-players", 20, "player cap reported in the status document")
	flag.Parse()

	logger := zap.Must(zap.NewProduction()).Sugar()

	var reg registry.Registry
	if *etcdEndpoints != "" && *advertiseAddr != "" {
		r, err := registry.NewEtcdRegistry(strings.Split(*etcdEndpoints, ","))
		if err != nil {
			logger.Fatalw("connecting to etcd", "error", err)
		}
		reg = r
	}

	status := statuspb.New("mcproto 1.21.8", 772, int32(*maxPlayers), 0, *motd)
	knownPacks := []packets.KnownPack{{Namespace: "minecraft", ID: "core", Version: "1.21.8"}}

	svr := server.NewServer(status, knownPacks)
	logger.Infow("server listening", "addr", *listenAddr)
	if err := svr.Serve("tcp", *listenAddr, *advertiseAddr, reg); err != nil {
		logger.Fatalw("server exited", "error", err)
	}
}
