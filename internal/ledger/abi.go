package ledger

// contractABI is the subset of the remittance order contract used here.
// orders(uint256) is assumed to return the full order tuple in declaration
// order.
const contractABI = `[
  {
    "type": "function",
    "name": "requestOrder",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "metaHash", "type": "bytes32"},
      {"name": "encKeyWrapHash", "type": "bytes32"},
      {"name": "amount", "type": "uint256"},
      {"name": "dstBank", "type": "address"},
      {"name": "expiry", "type": "uint256"}
    ],
    "outputs": [{"name": "tokenId", "type": "uint256"}]
  },
  {
    "type": "function",
    "name": "orders",
    "stateMutability": "view",
    "inputs": [{"name": "", "type": "uint256"}],
    "outputs": [
      {"name": "metaHash", "type": "bytes32"},
      {"name": "encKeyWrapHash", "type": "bytes32"},
      {"name": "amount", "type": "uint256"},
      {"name": "srcBank", "type": "address"},
      {"name": "dstBank", "type": "address"},
      {"name": "expiry", "type": "uint256"}
    ]
  },
  {
    "type": "event",
    "name": "OrderRequested",
    "anonymous": false,
    "inputs": [
      {"name": "tokenId", "type": "uint256", "indexed": true},
      {"name": "srcBank", "type": "address", "indexed": true},
      {"name": "dstBank", "type": "address", "indexed": true}
    ]
  }
]`

const (
	methodRequestOrder = "requestOrder"
	methodOrders       = "orders"
	eventSubmitted     = "OrderRequested"
)
