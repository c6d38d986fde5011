package config

const (
	// SignersMaxCount bounds the signer set of a multisig account.
	SignersMaxCount = 255
	// DescriptionMaxLength bounds free-form proposal descriptions.
	DescriptionMaxLength = 1024
)
