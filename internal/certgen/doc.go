// Package certgen creates a locally-trusted localhost certificate by
// driving mkcert.
//
// Generator.Create obtains an mkcert binary, runs
//
//	mkcert -install -key-file <dir>/localhost-key.pem -cert-file <dir>/localhost.pem localhost
//
// then asks mkcert -CAROOT where the root CA lives, checks that both PEM
// files were written and adds the certificate directory to the project's
// .gitignore. Every failure is returned to the caller, who decides whether
// to continue without TLS.
//
// mkcert is reached through the Tool interface; ExecTool is the process
// backed implementation, tests substitute their own.
package certgen
