package consts

// Component names of the warehouse domain.
const (
	COMP_DAO_PRODUCT = "dao_product"
	COMP_DAO_USER    = "dao_user"

	COMP_SVC_METRICS = "warehouse_metrics"
	COMP_SVC_AUTH    = "auth_service"
	COMP_SVC_PRODUCT = "product_service"
	COMP_SVC_SEEDER  = "seed_service"

	COMP_CTRL_AUTH    = "auth_ctrl"
	COMP_CTRL_PRODUCT = "product_ctrl"
	COMP_CTRL_REPORT  = "report_ctrl"
	COMP_CTRL_LOGS    = "logs_ctrl"
)
