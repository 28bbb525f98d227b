// Command signalconsumer listens for the sine-wave signal sent by
// signalproducer and prints each sample as it is delivered.
package main

import (
	"log"

	"qdp/internal/config"
	"qdp/internal/signal"
	"qdp/pkg/consumer"
	"qdp/pkg/frame"
	"qdp/pkg/transport"
)

func main() {
	log.Println("signal consumer started")

	cfg, err := config.LoadConsumerYaml("configs/consumer.yaml")
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	tr, err := transport.NewUDPConsumerTransport(cfg.ListenAddr.String())
	if err != nil {
		log.Fatalf("creating consumer transport: %v", err)
	}
	defer tr.Close()

	c := consumer.New[signal.Sample](tr, frame.FixedCodec[signal.Sample](), cfg.Tuning.ConsumerOptions()...)
	defer c.Stop()

	c.SetMissedFrameCallback(func(seqNo uint16) {
		log.Printf("signal consumer: seqNo %d never arrived, skipping", seqNo)
	})

	for {
		sample := c.Dequeue()
		log.Printf("t=%.6f signal=%.6f", sample.TimeStampSecs, sample.Value)
	}
}
