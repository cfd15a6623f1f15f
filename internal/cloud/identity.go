package cloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"go.uber.org/zap"
)

// RoleSummary describes one IAM role and its attached managed policies.
type RoleSummary struct {
	Name             string
	ARN              string
	AttachedPolicies []string
}

// Identity inspects IAM roles and evaluates permissions.
type Identity struct {
	client IAMAPI
	log    *zap.SugaredLogger
}

func NewIdentity(client IAMAPI) *Identity {
	return &Identity{client: client, log: zap.S().Named("cloud.identity")}
}

// DescribeRole returns the role's ARN and attached managed policy names.
func (i *Identity) DescribeRole(ctx context.Context, roleName string) (RoleSummary, error) {
	roleOut, err := i.client.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(roleName)})
	if err != nil {
		return RoleSummary{}, fmt.Errorf("failed to get role %q: %w", roleName, err)
	}
	if roleOut.Role == nil {
		return RoleSummary{}, fmt.Errorf("role %q not found", roleName)
	}

	summary := RoleSummary{
		Name: roleName,
		ARN:  aws.ToString(roleOut.Role.Arn),
	}

	input := &iam.ListAttachedRolePoliciesInput{RoleName: aws.String(roleName)}
	for {
		out, err := i.client.ListAttachedRolePolicies(ctx, input)
		if err != nil {
			return summary, fmt.Errorf("failed to list policies of role %q: %w", roleName, err)
		}
		for _, policy := range out.AttachedPolicies {
			summary.AttachedPolicies = append(summary.AttachedPolicies, aws.ToString(policy.PolicyName))
		}
		if out.Marker == nil {
			break
		}
		input.Marker = out.Marker
	}

	return summary, nil
}

// CanPerform simulates the given actions for a principal and returns, per
// action, whether IAM would allow it.
func (i *Identity) CanPerform(ctx context.Context, principalARN string, actions []string) (map[string]bool, error) {
	out, err := i.client.SimulatePrincipalPolicy(ctx, &iam.SimulatePrincipalPolicyInput{
		PolicySourceArn: aws.String(principalARN),
		ActionNames:     actions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to simulate policy for %q: %w", principalARN, err)
	}

	decisions := make(map[string]bool, len(out.EvaluationResults))
	for _, result := range out.EvaluationResults {
		decisions[aws.ToString(result.EvalActionName)] = result.EvalDecision == iamtypes.PolicyEvaluationDecisionTypeAllowed
	}

	i.log.Debugw("simulated principal policy", "principal", principalARN, "decisions", decisions)
	return decisions, nil
}
