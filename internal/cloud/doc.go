// Package cloud reads the deployed AWS infrastructure through narrow,
// dependency-injected control-plane interfaces.
//
// Each inspector covers one service area and depends only on the SDK calls
// it actually issues, declared as a small interface satisfied by the real
// client (compile-time checked in clients.go) and by hand-written fakes in
// tests:
//
//	Compute    EC2 instances, VPCs, subnets, security groups
//	Storage    S3 bucket configuration
//	Database   RDS instances and DynamoDB tables
//	Messaging  SNS topics and SQS queues
//	Functions  Lambda configuration and invoke smoke tests
//	Identity   IAM roles, policies, policy simulation
//	Audit      CloudWatch Logs and CloudTrail
//
// All calls are describe/list/get reads except Functions.InvokeSmoke, which
// executes the function under test. Log and trail searches go through
// probe.Poll since both stores are eventually consistent.
//
// Nothing here is a process-wide singleton: NewClients builds one set of SDK
// clients from an aws.Config and the inspectors receive them explicitly.
package cloud
