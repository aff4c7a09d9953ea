package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Conf *viper.Viper

func init() {
	Conf = viper.New()

	// defaults
	Conf.SetTypeByDefaultValue(true)
	Conf.SetDefault("debug", true)
	Conf.SetDefault("appName", "EduToken")
	Conf.SetDefault("serverAddress", ":8000")
	Conf.SetDefault("tokenSymbol", "EDU")

	// contract deployed on Paseo Asset Hub
	Conf.SetDefault("contractAddress", "0x1AF1C89DCF2fC4aDcC4Ba174289aa6E6cd1710cD")
	Conf.SetDefault("chainId", "0x190F1B46") // hex for 420420422
	Conf.SetDefault("chainName", "Paseo Asset Hub")
	Conf.SetDefault("rpcUrls", []string{"https://testnet-passet-hub-eth-rpc.polkadot.io"})
	Conf.SetDefault("blockExplorerUrls", []string{"https://blockscout-passet-hub.parity-testnet.parity.io"})
	Conf.SetDefault("currencyName", "PAS")
	Conf.SetDefault("currencySymbol", "PAS")
	Conf.SetDefault("currencyDecimals", 18)

	Conf.SetDefault("keystoreDir", filepath.Join(Getwd(), "keystore"))
	Conf.SetDefault("keystorePassphrase", "")
	Conf.SetDefault("txConfirmationTimeout", 2*time.Minute)
	Conf.SetDefault("rollbarToken", "")

	// contract owner simulated by the in-memory authority in DEV mode
	Conf.SetDefault("devOwnerAddress", "0x1AF1C89DCF2fC4aDcC4Ba174289aa6E6cd1710cD")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		Conf.SetDefault("testMode", true)
	}
	Conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	Conf.AutomaticEnv()
}

type (
	// NativeCurrency describes the chain's native currency as reported to wallets.
	NativeCurrency struct {
		Name     string `json:"name"`
		Symbol   string `json:"symbol"`
		Decimals int    `json:"decimals"`
	}

	// NetworkConfig is the required network identity: wallets on any other chain
	// must be switched (or taught this chain) before a session is established.
	NetworkConfig struct {
		ChainID           string         `json:"chainId"` // hex, eg. "0x190F1B46"
		ChainName         string         `json:"chainName"`
		RPCURLs           []string       `json:"rpcUrls"`
		NativeCurrency    NativeCurrency `json:"nativeCurrency"`
		BlockExplorerURLs []string       `json:"blockExplorerUrls"`
	}
)

// Network returns the required network identity from the active configuration.
func Network() NetworkConfig {
	return NetworkConfig{
		ChainID:           Conf.GetString("chainId"),
		ChainName:         Conf.GetString("chainName"),
		RPCURLs:           Conf.GetStringSlice("rpcUrls"),
		BlockExplorerURLs: Conf.GetStringSlice("blockExplorerUrls"),
		NativeCurrency: NativeCurrency{
			Name:     Conf.GetString("currencyName"),
			Symbol:   Conf.GetString("currencySymbol"),
			Decimals: Conf.GetInt("currencyDecimals"),
		},
	}
}
