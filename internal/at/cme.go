package at

// CmeCode +CME ERROR 结果码（HFP v1.8 §4.34.2 采用的 TS 27.007 子集）
type CmeCode int

const (
	CmeAgFailure             CmeCode = 0
	CmeNoConnectionToPhone   CmeCode = 1
	CmeOperationNotAllowed   CmeCode = 3
	CmeOperationNotSupported CmeCode = 4
	CmePhSimPinRequired      CmeCode = 5
	CmeSimNotInserted        CmeCode = 10
	CmeSimPinRequired        CmeCode = 11
	CmeSimPukRequired        CmeCode = 12
	CmeSimFailure            CmeCode = 13
	CmeSimBusy               CmeCode = 14
	CmeIncorrectPassword     CmeCode = 16
	CmeSimPin2Required       CmeCode = 17
	CmeSimPuk2Required       CmeCode = 18
	CmeMemoryFull            CmeCode = 20
	CmeInvalidIndex          CmeCode = 21
	CmeMemoryFailure         CmeCode = 23
	CmeTextStringTooLong     CmeCode = 24
	CmeInvalidCharacters     CmeCode = 25
	CmeDialStringTooLong     CmeCode = 26
	CmeInvalidDialString     CmeCode = 27
	CmeNoNetworkService      CmeCode = 30
	CmeNetworkTimeout        CmeCode = 31
	CmeNetworkNotAllowed     CmeCode = 32
)
