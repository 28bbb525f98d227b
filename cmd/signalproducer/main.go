// Command signalproducer drives a synthetic sine-wave signal to a
// consumer listening on the address named in its config file.
package main

import (
	"log"
	"time"

	"qdp/internal/config"
	"qdp/internal/signal"
	"qdp/pkg/frame"
	"qdp/pkg/producer"
	"qdp/pkg/transport"
)

func main() {
	log.Println("signal producer started")

	cfg, err := config.LoadProducerYaml("configs/producer.yaml")
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	tr, err := transport.NewUDPProducerTransport(cfg.ConsumerAddr.String())
	if err != nil {
		log.Fatalf("creating producer transport: %v", err)
	}
	defer tr.Close()

	p := producer.New[signal.Sample](tr, frame.FixedCodec[signal.Sample](), cfg.Tuning.ProducerOptions()...)
	defer p.Stop()

	start := time.Now()
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for now := range ticker.C {
		p.Enqueue(signal.Generate(start, now))
	}
}
