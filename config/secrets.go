package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

const ssmPrefix = "ssm:"

// ParameterStore is the subset of the SSM client used to resolve secrets.
type ParameterStore interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ResolveSecrets replaces every value of the form "ssm:/path/to/param" with the decrypted
// parameter value. A client is only created when at least one reference exists.
func ResolveSecrets(ctx context.Context, c map[string]string, store ParameterStore) error {
	var keys []string
	for k, v := range c {
		if strings.HasPrefix(v, ssmPrefix) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}

	if store == nil {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		store = ssm.NewFromConfig(awsCfg)
	}

	for _, k := range keys {
		name := strings.TrimPrefix(c[k], ssmPrefix)
		out, err := store.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String(name),
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			return fmt.Errorf("resolve %s from ssm parameter %s: %w", k, name, err)
		}
		if out.Parameter == nil {
			return fmt.Errorf("ssm parameter %s has no value", name)
		}
		c[k] = aws.ToString(out.Parameter.Value)
	}
	return nil
}
