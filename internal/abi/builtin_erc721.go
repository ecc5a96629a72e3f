package abi

func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          "erc721",
		Name:        "ERC-721 Non-Fungible Token",
		Description: "Standard ERC-721 interface (EIP-721) with the metadata extension.",
		Signatures: []string{
			"function name() view returns (string)",
			"function symbol() view returns (string)",
			"function tokenURI(uint256 tokenId) view returns (string)",
			"function balanceOf(address owner) view returns (uint256)",
			"function ownerOf(uint256 tokenId) view returns (address)",
			"function getApproved(uint256 tokenId) view returns (address)",
			"function isApprovedForAll(address owner, address operator) view returns (bool)",
			"function approve(address to, uint256 tokenId)",
			"function setApprovalForAll(address operator, bool approved)",
			"function transferFrom(address from, address to, uint256 tokenId)",
			"function safeTransferFrom(address from, address to, uint256 tokenId)",
			"function safeTransferFrom(address from, address to, uint256 tokenId, bytes data)",
			"event Transfer(address indexed from, address indexed to, uint256 indexed tokenId)",
			"event Approval(address indexed owner, address indexed approved, uint256 indexed tokenId)",
			"event ApprovalForAll(address indexed owner, address indexed operator, bool approved)",
		},
	})
}
