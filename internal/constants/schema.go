package constants

// The published analytics schema. The pipeline only ever talks to this fixed
// set of tables and views; nothing here is discovered at runtime.

const (
	QuestionMinLength = 5
	QuestionMaxLength = 500

	MaxResultRows    = 1000
	MaxJoins         = 5
	MaxNestedSelects = 3

	// Execution attempts = 1 initial + MaxSQLRegenerations.
	MaxSQLRegenerations = 2

	NumericSampleSize = 10

	DataMinDate = "2025-06-01"
	DataMaxDate = "2025-08-31"
)

// AllowedTables is the full allow-list for sqlguard: base tables plus views.
var AllowedTables = []string{
	"locations",
	"orders",
	"products",
	"order_items",
	"llm_interactions",
	"daily_sales_summary",
	"top_products_revenue",
}

var ProductCategories = []string{
	"burgers", "sandwiches", "sides", "appetizers", "beverages",
	"breakfast", "entrees", "salads", "desserts", "alcohol", "unknown",
}

var LocationNames = []string{
	"Downtown", "Airport", "Mall Location", "University",
}

var SourceSystems = []string{"Toast", "DoorDash", "Square"}

var OrderTypes = []string{"DINE_IN", "TAKE_OUT", "PICKUP", "DELIVERY"}

// SchemaDescription is embedded verbatim in the generation and filter prompts.
const SchemaDescription = `TABLES:

locations - restaurant locations
  id (uuid, PK), canonical_name (text, one of: Downtown, Airport, Mall Location, University),
  toast_id (text), doordash_id (text), square_id (text),
  address_line_1 (text), city (text), state (text), zip_code (text),
  country (text), timezone (text), created_at (timestamptz), updated_at (timestamptz)

orders - one row per order across all source systems
  id (uuid, PK), order_id (text, unique), source_system (enum: Toast, DoorDash, Square),
  location_id (uuid, FK -> locations.id), external_order_id (text),
  timestamp_utc (timestamptz), business_date (date), hour_of_day (int 0-23), day_of_week (int 0-6, 0=Sunday),
  order_type (text: DINE_IN, TAKE_OUT, PICKUP, DELIVERY),
  total_amount_cents (int), subtotal_amount_cents (int), tax_amount_cents (int),
  tip_amount_cents (int), net_revenue_cents (int), fee_amount_cents (int),
  payment_method (text), card_brand (text), status (text: COMPLETED, CANCELLED, REFUNDED, VOIDED, DELIVERED, FULFILLED),
  created_at (timestamptz), updated_at (timestamptz)

products - canonical product catalog
  id (uuid, PK), canonical_name (text), category (enum: burgers, sandwiches, sides, appetizers,
  beverages, breakfast, entrees, salads, desserts, alcohol, unknown),
  description (text), created_at (timestamptz), updated_at (timestamptz)

order_items - line items for each order
  id (uuid, PK), order_id (uuid, FK -> orders.id), product_id (uuid, FK -> products.id),
  item_name (text), canonical_name (text), category (enum, same values as products.category),
  quantity (int), unit_price_cents (int), total_price_cents (int), created_at (timestamptz)

llm_interactions - log of assistant invocations (rarely useful for analytics questions)
  id (uuid, PK), user_prompt (text), llm_response (text), error_details (text),
  success_status (bool), agent_answered (bool), step_failed (text),
  response_time_ms (int), created_at (timestamptz)

VIEWS:

daily_sales_summary - per location per business date
  business_date (date), location_id (uuid), location_name (text),
  order_count (bigint), revenue (numeric, dollars), avg_order_value (numeric, dollars),
  total_tips (numeric, dollars)

top_products_revenue - per product aggregates
  product_name (text), category (text), location_name (text),
  total_quantity (bigint), revenue (numeric, dollars), order_count (bigint)

NOTES:
- All *_cents columns are integer cents; divide by 100.0 to report dollars.
- Data covers business_date from 2025-06-01 through 2025-08-31 only.
- Prefer the views for revenue questions; they already expose dollars.`
