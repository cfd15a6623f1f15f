package cloud

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"go.uber.org/zap"
)

// FunctionSummary is the configuration slice of one Lambda function.
type FunctionSummary struct {
	Name           string
	Runtime        string
	Handler        string
	TimeoutSeconds int32
	MemoryMB       int32
	State          string
	EnvKeys        []string
}

// InvokeResult captures a synchronous invocation outcome.
type InvokeResult struct {
	StatusCode    int32
	Payload       []byte
	FunctionError string
}

// Failed reports whether the invocation raised a function-level error.
func (r InvokeResult) Failed() bool {
	return r.FunctionError != ""
}

// Functions inspects and smoke-tests Lambda functions.
type Functions struct {
	client LambdaAPI
	log    *zap.SugaredLogger
}

func NewFunctions(client LambdaAPI) *Functions {
	return &Functions{client: client, log: zap.S().Named("cloud.functions")}
}

// DescribeFunction returns the configuration summary of one function.
// Environment variable values are deliberately not exposed, only their keys.
func (f *Functions) DescribeFunction(ctx context.Context, name string) (FunctionSummary, error) {
	out, err := f.client.GetFunction(ctx, &lambda.GetFunctionInput{FunctionName: aws.String(name)})
	if err != nil {
		return FunctionSummary{}, fmt.Errorf("failed to get function %q: %w", name, err)
	}
	if out.Configuration == nil {
		return FunctionSummary{}, fmt.Errorf("function %q has no configuration", name)
	}

	cfg := out.Configuration
	summary := FunctionSummary{
		Name:           name,
		Runtime:        string(cfg.Runtime),
		Handler:        aws.ToString(cfg.Handler),
		TimeoutSeconds: aws.ToInt32(cfg.Timeout),
		MemoryMB:       aws.ToInt32(cfg.MemorySize),
		State:          string(cfg.State),
	}
	if cfg.Environment != nil {
		for key := range cfg.Environment.Variables {
			summary.EnvKeys = append(summary.EnvKeys, key)
		}
		sort.Strings(summary.EnvKeys)
	}

	return summary, nil
}

// InvokeSmoke synchronously invokes the function with the given payload.
// This is the one non-read operation in the package.
func (f *Functions) InvokeSmoke(ctx context.Context, name string, payload []byte) (InvokeResult, error) {
	f.log.Infow("invoking function", "function", name)

	out, err := f.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(name),
		Payload:      payload,
	})
	if err != nil {
		return InvokeResult{}, fmt.Errorf("failed to invoke function %q: %w", name, err)
	}

	return InvokeResult{
		StatusCode:    out.StatusCode,
		Payload:       out.Payload,
		FunctionError: aws.ToString(out.FunctionError),
	}, nil
}
