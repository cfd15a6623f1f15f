package cloud_test

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stackproof/stackproof/internal/cloud"
)

type fakeIAM struct {
	role       *iam.GetRoleOutput
	policies   *iam.ListAttachedRolePoliciesOutput
	simulation *iam.SimulatePrincipalPolicyOutput
}

func (f *fakeIAM) GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error) {
	return f.role, nil
}

func (f *fakeIAM) ListAttachedRolePolicies(ctx context.Context, params *iam.ListAttachedRolePoliciesInput, optFns ...func(*iam.Options)) (*iam.ListAttachedRolePoliciesOutput, error) {
	return f.policies, nil
}

func (f *fakeIAM) SimulatePrincipalPolicy(ctx context.Context, params *iam.SimulatePrincipalPolicyInput, optFns ...func(*iam.Options)) (*iam.SimulatePrincipalPolicyOutput, error) {
	return f.simulation, nil
}

var _ = Describe("Identity", func() {
	var (
		ctx      context.Context
		fake     *fakeIAM
		identity *cloud.Identity
	)

	BeforeEach(func() {
		ctx = context.Background()
		fake = &fakeIAM{
			role: &iam.GetRoleOutput{
				Role: &iamtypes.Role{
					Arn: aws.String("arn:aws:iam::123:role/vault-app"),
				},
			},
			policies: &iam.ListAttachedRolePoliciesOutput{
				AttachedPolicies: []iamtypes.AttachedPolicy{
					{PolicyName: aws.String("vault-s3-access"), PolicyArn: aws.String("arn:aws:iam::123:policy/vault-s3-access")},
				},
			},
			simulation: &iam.SimulatePrincipalPolicyOutput{
				EvaluationResults: []iamtypes.EvaluationResult{
					{EvalActionName: aws.String("s3:GetObject"), EvalDecision: iamtypes.PolicyEvaluationDecisionTypeAllowed},
					{EvalActionName: aws.String("iam:DeleteRole"), EvalDecision: iamtypes.PolicyEvaluationDecisionTypeImplicitDeny},
				},
			},
		}
		identity = cloud.NewIdentity(fake)
	})

	Describe("DescribeRole", func() {
		It("should return the role ARN and attached policy names", func() {
			summary, err := identity.DescribeRole(ctx, "vault-app")

			Expect(err).NotTo(HaveOccurred())
			Expect(summary.ARN).To(Equal("arn:aws:iam::123:role/vault-app"))
			Expect(summary.AttachedPolicies).To(ConsistOf("vault-s3-access"))
		})
	})

	Describe("CanPerform", func() {
		It("should map simulation decisions per action", func() {
			decisions, err := identity.CanPerform(ctx, "arn:aws:iam::123:role/vault-app",
				[]string{"s3:GetObject", "iam:DeleteRole"})

			Expect(err).NotTo(HaveOccurred())
			Expect(decisions).To(HaveKeyWithValue("s3:GetObject", true))
			Expect(decisions).To(HaveKeyWithValue("iam:DeleteRole", false))
		})
	})
})
