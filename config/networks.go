package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

const (
	// TestnetChainID identifies the test network.
	TestnetChainID uint64 = 97
	// MainnetChainID identifies the production network.
	MainnetChainID uint64 = 56

	mainnetUSDT = "0x55d398326f99059fF775485246999027B3197955"
)

// Deployment is the ledger instance registered for one chain.
type Deployment struct {
	Name           string `yaml:"name"`
	ChainID        uint64 `yaml:"chainId"`
	Ledger         string `yaml:"ledger"`
	SupportedToken string `yaml:"supportedToken"`
}

// Deployments maps chain ids to ledger instances.
type Deployments struct {
	Networks []Deployment `yaml:"networks"`
}

// ResolvedDeployment carries parsed addresses for a chain.
type ResolvedDeployment struct {
	Name           string
	ChainID        uint64
	Ledger         common.Address
	SupportedToken common.Address
}

// DefaultDeployments returns the built-in registry. Ledger addresses are
// only known once a ledger has been deployed, so the defaults use fixed
// custody accounts.
func DefaultDeployments() *Deployments {
	return &Deployments{Networks: []Deployment{
		{
			Name:           "testnet",
			ChainID:        TestnetChainID,
			Ledger:         "0x5757000000000000000000000000000000000097",
			SupportedToken: "0x5757000000000000000000000000000000009797",
		},
		{
			Name:           "mainnet",
			ChainID:        MainnetChainID,
			Ledger:         "0x5757000000000000000000000000000000000056",
			SupportedToken: mainnetUSDT,
		},
	}}
}

// LoadDeployments reads a YAML registry from path. An empty path yields the
// built-in registry.
func LoadDeployments(path string) (*Deployments, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultDeployments(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deployments: %w", err)
	}
	var out Deployments
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode deployments %s: %w", path, err)
	}
	return &out, nil
}

// Resolve returns the deployment registered for chainID.
func (d *Deployments) Resolve(chainID uint64) (ResolvedDeployment, error) {
	if d == nil {
		return ResolvedDeployment{}, fmt.Errorf("no deployments registered")
	}
	for _, network := range d.Networks {
		if network.ChainID != chainID {
			continue
		}
		ledger, err := parseAddress(network.Ledger)
		if err != nil {
			return ResolvedDeployment{}, fmt.Errorf("chain %d ledger: %w", chainID, err)
		}
		token, err := parseAddress(network.SupportedToken)
		if err != nil {
			return ResolvedDeployment{}, fmt.Errorf("chain %d supported token: %w", chainID, err)
		}
		return ResolvedDeployment{Name: network.Name, ChainID: chainID, Ledger: ledger, SupportedToken: token}, nil
	}
	return ResolvedDeployment{}, fmt.Errorf("unknown chain id %d", chainID)
}

// DefaultIntervals returns the genesis reward interval and affiliate vesting
// period used on chainID.
func DefaultIntervals(chainID uint64) (interval, vesting uint64) {
	if chainID == MainnetChainID {
		return 2_592_000, 7_776_000
	}
	return 60, 180
}
