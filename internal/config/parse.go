// Package config loads the YAML files that describe a producer or
// consumer endpoint: which address to dial or listen on, and any
// overrides to the protocol's tuning constants.
package config

import (
	"fmt"
	"net"
	"os"

	// Third party YAML builder and parser
	"github.com/goccy/go-yaml"
)

// LoadProducerYaml reads and resolves a producer config file.
func LoadProducerYaml(cfgPath string) (ReadyProducerConfig, error) {
	data, err := readConfigFile(cfgPath)
	if err != nil {
		return ReadyProducerConfig{}, err
	}

	var rawCfg RawProducerConfig
	if err := parseYAML(data, &rawCfg); err != nil {
		return ReadyProducerConfig{}, err
	}

	addr, err := resolveUDPAddr(rawCfg.Producer.ConsumerAddr)
	if err != nil {
		return ReadyProducerConfig{}, err
	}

	return ReadyProducerConfig{
		ConsumerAddr: addr,
		Tuning:       rawCfg.Producer.Tuning,
	}, nil
}

// LoadConsumerYaml reads and resolves a consumer config file.
func LoadConsumerYaml(cfgPath string) (ReadyConsumerConfig, error) {
	data, err := readConfigFile(cfgPath)
	if err != nil {
		return ReadyConsumerConfig{}, err
	}

	var rawCfg RawConsumerConfig
	if err := parseYAML(data, &rawCfg); err != nil {
		return ReadyConsumerConfig{}, err
	}

	addr, err := resolveUDPAddr(rawCfg.Consumer.ListenAddr)
	if err != nil {
		return ReadyConsumerConfig{}, err
	}

	return ReadyConsumerConfig{
		ListenAddr: addr,
		Tuning:     rawCfg.Consumer.Tuning,
	}, nil
}

func readConfigFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration file %s: %w", path, err)
	}
	return data, nil
}

func parseYAML(data []byte, cfg any) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	return nil
}

func resolveUDPAddr(address string) (*net.UDPAddr, error) {
	addr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("resolving UDP address %q: %w", address, err)
	}
	return addr, nil
}
