package neynar

// Signer is the provider's view of a delegated signer. ApprovalURL is only
// present while the signer still needs a human approval; Fid only once the
// signer has been approved.
type Signer struct {
	SignerUUID        string `json:"signer_uuid"`
	PublicKey         string `json:"public_key"`
	Status            string `json:"status"`
	SignerApprovalURL string `json:"signer_approval_url,omitempty"`
	Fid               int64  `json:"fid,omitempty"`
}

const (
	SignerStatusGenerated       = "generated"
	SignerStatusPendingApproval = "pending_approval"
	SignerStatusApproved        = "approved"
	SignerStatusRevoked         = "revoked"
)

type registerSignedKeyRequest struct {
	SignerUUID string `json:"signer_uuid"`
	AppFid     int64  `json:"app_fid"`
	Deadline   int64  `json:"deadline"`
	Signature  string `json:"signature"`
	Sponsor    *struct {
		SponsoredByNeynar bool `json:"sponsored_by_neynar"`
	} `json:"sponsor,omitempty"`
}

type VerifiedAddresses struct {
	EthAddresses []string `json:"eth_addresses"`
}

type User struct {
	Fid               int64             `json:"fid"`
	Username          string            `json:"username"`
	DisplayName       string            `json:"display_name"`
	PfpURL            string            `json:"pfp_url"`
	CustodyAddress    string            `json:"custody_address"`
	VerifiedAddresses VerifiedAddresses `json:"verified_addresses"`
}

type searchUserResponse struct {
	Result struct {
		Users []User `json:"users"`
	} `json:"result"`
}

type publishCastRequest struct {
	SignerUUID string `json:"signer_uuid"`
	Text       string `json:"text"`
}

type publishCastResponse struct {
	Cast struct {
		Hash string `json:"hash"`
	} `json:"cast"`
}
