// Copyright (c) 2024 the mandos authors

package mandos

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseScenarioMissingRequiredFields(t *testing.T) {
	cases := map[string]string{
		"externalSteps without path": `{"steps":[{"step":"externalSteps"}]}`,
		"setState account without nonce": `{"steps":[{"step":"setState","accounts":{
			"address:a":{"balance":"1","storage":{}}}}]}`,
		"setState account without balance": `{"steps":[{"step":"setState","accounts":{
			"address:a":{"nonce":"1","storage":{}}}}]}`,
		"setState account without storage": `{"steps":[{"step":"setState","accounts":{
			"address:a":{"nonce":"1","balance":"1"}}}]}`,
		"scCall without txId": `{"steps":[{"step":"scCall","tx":{
			"from":"address:a","to":"address:b","value":"0","function":"f",
			"gasLimit":"1","gasPrice":"1"}}]}`,
		"scCall without tx.from": `{"steps":[{"step":"scCall","txId":"t","tx":{
			"to":"address:b","value":"0","function":"f","gasLimit":"1","gasPrice":"1"}}]}`,
		"scCall without tx.function": `{"steps":[{"step":"scCall","txId":"t","tx":{
			"from":"address:a","to":"address:b","value":"0","gasLimit":"1","gasPrice":"1"}}]}`,
		"scCall without tx.gasLimit": `{"steps":[{"step":"scCall","txId":"t","tx":{
			"from":"address:a","to":"address:b","value":"0","function":"f","gasPrice":"1"}}]}`,
		"scDeploy without tx.contractCode": `{"steps":[{"step":"scDeploy","txId":"t","tx":{
			"from":"address:a","value":"0","gasLimit":"1","gasPrice":"1"}}]}`,
		"transfer without tx.value": `{"steps":[{"step":"transfer","txId":"t","tx":{
			"from":"address:a","to":"address:b"}}]}`,
		"validatorReward without tx.to": `{"steps":[{"step":"validatorReward","txId":"t","tx":{
			"value":"1"}}]}`,
		"scCall expect without status": `{"steps":[{"step":"scCall","txId":"t","tx":{
			"from":"address:a","to":"address:b","value":"0","function":"f","gasLimit":"1","gasPrice":"1"},
			"expect":{"logs":"*"}}]}`,
		"scCall expect without logs": `{"steps":[{"step":"scCall","txId":"t","tx":{
			"from":"address:a","to":"address:b","value":"0","function":"f","gasLimit":"1","gasPrice":"1"},
			"expect":{"status":"0"}}]}`,
		"scCall expect log without identifier": `{"steps":[{"step":"scCall","txId":"t","tx":{
			"from":"address:a","to":"address:b","value":"0","function":"f","gasLimit":"1","gasPrice":"1"},
			"expect":{"status":"0","logs":[{"address":"address:a","data":"0x00"}]}}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScenario([]byte(doc))
			var mErr *Error
			require.ErrorAs(t, err, &mErr)
			require.Equal(t, Shape, mErr.Kind)
		})
	}
}

func TestParseScenarioAllRequiredFieldsPresent(t *testing.T) {
	doc := `{"steps":[{"step":"scCall","txId":"t","tx":{
		"from":"address:a","to":"address:b","value":"0","function":"f",
		"gasLimit":"1","gasPrice":"1"},
		"expect":{"status":"0","logs":[{"address":"address:a","identifier":"str:x","data":"0x00"}]}}]}`
	_, err := ParseScenario([]byte(doc))
	require.NoError(t, err)
}
