// Command mcproxy is the proxy edge: a Minecraft-protocol-aware front door
// that answers STATUS locally and relays LOGIN connections to whichever
// backend server instance is registered in etcd, picked by consistent
// hashing on the connecting player's username.
package main

import (
	"flag"
	"strings"

	"go.uber.org/zap"

	"mcproto/proxy"
	"mcproto/registry"
	"mcproto/statuspb"
)

func main() {
	listenAddr := flag.String("listen", "0.0.0.0:25565", "address the proxy accepts player connections on")
	etcdEndpoints := flag.String("etcd", "127.0.0.1:2379", "comma-separated etcd endpoints used for backend discovery")
	motd := flag.String("motd", "A mcproto proxy", "status MOTD shown in the server list")
	flag.Parse()

	logger := zap.Must(zap.NewProduction()).Sugar()

	reg, err := registry.NewEtcdRegistry(strings.Split(*etcdEndpoints, ","))
	if err != nil {
		logger.Fatalw("connecting to etcd", "error", err)
	}

	status := statuspb.New("mcproto proxy", 772, 0, 0, *motd)
	p := proxy.New(status, reg)

	logger.Infow("proxy listening", "addr", *listenAddr)
	if err := p.Serve("tcp", *listenAddr); err != nil {
		logger.Fatalw("proxy exited", "error", err)
	}
}
