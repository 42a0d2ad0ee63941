package campaignmonitor

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sflowg/campaignmonitor/runtime/plugin"
)

const (
	// CredentialName is the credential record the node reads its API key from.
	CredentialName = "campaignMonitorApi"

	authAPIKey = "apiKey"
)

// BasicAuthHeader derives the Authorization header value for an API key:
// the key with a trailing colon, base64 encoded, prefixed with "Basic ".
func BasicAuthHeader(apiKey string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(apiKey+":"))
}

// apiKey reads the API key from the host credential store. It is called for
// every request; the key is never cached on the node.
func apiKey(exec *plugin.Execution) (string, error) {
	credentials, err := exec.Credentials(CredentialName)
	if err != nil {
		return "", plugin.NewNodeError(plugin.ErrorKindCredential, NodeName,
			fmt.Errorf("no credentials got returned: %w", err))
	}

	key, _ := credentials["apiKey"].(string)
	if strings.TrimSpace(key) == "" {
		return "", plugin.NewNodeError(plugin.ErrorKindCredential, NodeName,
			fmt.Errorf("credential %s has no apiKey", CredentialName))
	}
	return key, nil
}

// checkAuthentication rejects authentication methods other than API key.
func checkAuthentication(method string) error {
	if method == "" || method == authAPIKey {
		return nil
	}
	return plugin.NewNodeError(plugin.ErrorKindCredential, NodeName,
		fmt.Errorf("unsupported authentication method %q", method))
}
