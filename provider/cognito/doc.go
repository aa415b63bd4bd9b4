// Package cognito implements userpool.CredentialProvider and
// userpool.TokenValidator on top of an AWS Cognito user pool.
//
// Use this package with userpool.NewIdentitySync and userpool.NewRoleChange
// to keep credentials, groups, and tokens in Cognito while user records live
// in the local store.
package cognito
