package entity

// Claves del almacén clave-valor de configuración de la tienda.
const (
	SettingTaxRate        = "tax_rate"
	SettingCurrencySymbol = "currency_symbol"
	SettingInvoicePrefix  = "invoice_prefix"
	SettingStoreName      = "store_name"
)
