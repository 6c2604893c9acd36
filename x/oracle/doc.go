/*
Package oracle keeps the unit price of every asset a vault accepts,
expressed in the accounting unit with six decimals. Prices are posted by a
single oracle address. An asset without a posted price is valued at
MockPrice.
*/
package oracle
