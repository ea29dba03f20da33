package config

type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

func (e Environment) IsProduction() bool {
	return e == EnvProduction
}

// PrettyLogs reports whether logs should be written for humans rather than
// as JSON lines.
func (e Environment) PrettyLogs() bool {
	return e == EnvDevelopment
}
