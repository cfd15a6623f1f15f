// The acceptance suite validates a live deployment end to end. It is a
// standalone binary rather than a go test package so targets can be
// selected with flags:
//
//	go run ./test/acceptance \
//	    -region eu-west-1 -resource-prefix vault \
//	    -app-url https://vault.example.com -app-secret $SECRET \
//	    -mail-url https://mail.example.com -mail-token $TOKEN \
//	    -mail-inbox 42 -recipient qa@example.com
//
// Specs whose target is not configured are skipped, so the suite can be
// pointed at just the infrastructure, just the application, or both.
package main
