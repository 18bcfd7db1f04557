// Package config loads the ArborVest client SDK configuration.
//
// Values come from three layers, lowest precedence first: built-in defaults,
// an optional YAML file (desktop installs keep one next to the credential
// file), and environment variables. A .env file in the working directory is
// honored for development setups.
//
// The retry knobs configure the optional apiclient.Retrier decorator only;
// the gateway client itself never consults them and performs no retries.
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    // handle error
//	}
package config
